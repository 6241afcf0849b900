package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/fraudprep/internal/balance"
	"github.com/dvloznov/fraudprep/internal/cleaner"
	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/features"
	"github.com/dvloznov/fraudprep/internal/join"
	"github.com/dvloznov/fraudprep/internal/labeling"
	"github.com/dvloznov/fraudprep/internal/logger"
	"github.com/dvloznov/fraudprep/internal/report"
)

// LabelStep reads the raw transactions, joins the fraud labels and mcc
// categories on, and normalizes amounts.
type LabelStep struct{}

func (s *LabelStep) Name() string { return "label" }

func (s *LabelStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	t, err := dataset.ReadFile(state.Config.TransactionsPath)
	if err != nil {
		return err
	}
	labels, err := labeling.LoadFraudLabels(state.Config.FraudLabelsPath)
	if err != nil {
		return err
	}
	mccCodes, err := labeling.LoadMCCCodes(state.Config.MCCCodesPath)
	if err != nil {
		return err
	}

	stats, err := labeling.Apply(t, labels, mccCodes)
	if err != nil {
		return err
	}
	log.Info().
		Int("fraud", stats.Fraud).
		Int("legitimate", stats.Legitimate).
		Int("unlabeled", stats.Unlabeled).
		Int("unknown_mcc", stats.UnknownMCC).
		Msg("labels applied")

	state.Table = t
	return t.WriteFile(state.Config.OutPath(LabeledFile), dataset.WriteOptions{})
}

// CleanStep normalizes zips, fills online and error defaults, and drops
// unlabeled rows.
type CleanStep struct{}

func (s *CleanStep) Name() string { return "clean" }

func (s *CleanStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	cleaned, stats, err := cleaner.Clean(state.Table)
	if err != nil {
		return err
	}
	log.Info().
		Int("online_zips", stats.OnlineZipFilled).
		Int("international_zips", stats.InternationalZips).
		Int("errors_filled", stats.ErrorsFilled).
		Int("dropped_no_label", stats.DroppedNoLabel).
		Msg("table cleaned")

	state.Table = cleaned
	return cleaned.WriteFile(state.Config.OutPath(CleanFile), dataset.WriteOptions{QuoteAll: true})
}

// JoinStep attaches client and card attributes to every transaction.
type JoinStep struct{}

func (s *JoinStep) Name() string { return "join" }

func (s *JoinStep) Execute(ctx context.Context, state *State) error {
	users, err := dataset.ReadFile(state.Config.UsersPath)
	if err != nil {
		return err
	}
	cards, err := dataset.ReadFile(state.Config.CardsPath)
	if err != nil {
		return err
	}

	joined, err := join.Transactions(state.Table, users, cards)
	if err != nil {
		return err
	}
	state.Users = users
	state.Cards = cards
	state.Table = joined
	return nil
}

// BalanceStep downsamples non-fraud rows to a 10:1 ratio.
type BalanceStep struct{}

func (s *BalanceStep) Name() string { return "balance" }

func (s *BalanceStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	balanced, stats, err := balance.Downsample(state.Table, state.Config.Seed)
	if err != nil {
		return err
	}
	log.Info().
		Int("fraud", stats.Fraud).
		Int("non_fraud", stats.NonFraud).
		Msg("classes balanced")

	state.Table = balanced
	return balanced.WriteFile(state.Config.OutPath(BalancedFile), dataset.WriteOptions{})
}

// DeriveStep computes the model features and drops the raw columns they
// replace.
type DeriveStep struct{}

func (s *DeriveStep) Name() string { return "derive" }

func (s *DeriveStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	stats, err := features.Derive(state.Table)
	if err != nil {
		return err
	}
	log.Info().
		Int("unparseable_amounts", stats.UnparseableAmounts).
		Int("missing_dates", stats.MissingDates).
		Msg("features derived")

	return state.Table.WriteFile(state.Config.OutPath(FeaturesFile), dataset.WriteOptions{})
}

// ReportStep fits the forest and writes the feature-importance ranking.
type ReportStep struct{}

func (s *ReportStep) Name() string { return "report" }

func (s *ReportStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	cfg := report.DefaultConfig()
	cfg.Seed = state.Config.Seed
	cfg.Forest.Seed = state.Config.Seed

	res, err := report.Run(state.Table, nil, cfg, log)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	state.Report = res
	return res.WriteCSV(state.Config.OutPath(RankingFile))
}
