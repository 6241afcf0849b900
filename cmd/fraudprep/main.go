package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dvloznov/fraudprep/internal/balance"
	"github.com/dvloznov/fraudprep/internal/cleaner"
	"github.com/dvloznov/fraudprep/internal/dataset"
	"github.com/dvloznov/fraudprep/internal/encode"
	"github.com/dvloznov/fraudprep/internal/features"
	"github.com/dvloznov/fraudprep/internal/join"
	"github.com/dvloznov/fraudprep/internal/labeling"
	"github.com/dvloznov/fraudprep/internal/logger"
	"github.com/dvloznov/fraudprep/internal/pipeline"
	"github.com/dvloznov/fraudprep/internal/report"
	"github.com/dvloznov/fraudprep/internal/sample"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "label":
		runLabel(log)
	case "clean":
		runClean(log)
	case "join":
		runJoin(log)
	case "balance":
		runBalance(log)
	case "derive":
		runDerive(log)
	case "augment":
		runAugment(log)
	case "report":
		runReport(log)
	case "split":
		runSplit(log)
	case "inspect":
		runInspect(log)
	case "sample":
		runSample(log)
	case "run":
		runAll(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Fraud Detection Data Preparation CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  fraudprep <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  label     Join fraud labels and MCC categories onto raw transactions")
	fmt.Println("  clean     Normalize zips, online and error defaults, drop unlabeled rows")
	fmt.Println("  join      Attach client and card attributes to transactions")
	fmt.Println("  balance   Downsample non-fraud rows to a 10:1 ratio")
	fmt.Println("  derive    Compute model features from the joined table")
	fmt.Println("  augment   Window-augment fraud rows and undersample by nearest neighbor")
	fmt.Println("  report    Fit a random forest and rank features by importance")
	fmt.Println("  split     Fan a transactions file out into per-client files")
	fmt.Println("  inspect   Print per-column distinct-value counts")
	fmt.Println("  sample    Generate a synthetic input dataset")
	fmt.Println("  run       Execute the full label → report pipeline")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'fraudprep <command> -h' for more information on a command.")
}

func readTable(log zerolog.Logger, path string) *dataset.Table {
	t, err := dataset.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Reading input failed")
	}
	return t
}

func writeTable(log zerolog.Logger, t *dataset.Table, path string, opts dataset.WriteOptions) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Creating output directory failed")
	}
	if err := t.WriteFile(path, opts); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Writing output failed")
	}
	log.Info().Str("path", path).Int("rows", t.Len()).Msg("Output written")
}

func runLabel(log zerolog.Logger) {
	fs := flag.NewFlagSet("label", flag.ExitOnError)
	transactions := fs.String("transactions", "raw/transactions.csv", "Raw transactions CSV")
	labelsPath := fs.String("labels", "raw/fraud_labels.csv", "Fraud labels CSV")
	mccPath := fs.String("mcc-codes", "raw/mcc_codes.json", "MCC category JSON")
	out := fs.String("out", "out/"+pipeline.LabeledFile, "Output CSV")
	fs.Parse(os.Args[2:])

	t := readTable(log, *transactions)
	labels, err := labeling.LoadFraudLabels(*labelsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading fraud labels failed")
	}
	codes, err := labeling.LoadMCCCodes(*mccPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading MCC codes failed")
	}

	stats, err := labeling.Apply(t, labels, codes)
	if err != nil {
		log.Fatal().Err(err).Msg("Labeling failed")
	}
	log.Info().
		Int("fraud", stats.Fraud).
		Int("legitimate", stats.Legitimate).
		Int("unlabeled", stats.Unlabeled).
		Msg("Labels applied")
	writeTable(log, t, *out, dataset.WriteOptions{})
}

func runClean(log zerolog.Logger) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	in := fs.String("in", "out/"+pipeline.LabeledFile, "Labeled transactions CSV")
	out := fs.String("out", "out/"+pipeline.CleanFile, "Output CSV")
	fs.Parse(os.Args[2:])

	cleaned, stats, err := cleaner.Clean(readTable(log, *in))
	if err != nil {
		log.Fatal().Err(err).Msg("Cleaning failed")
	}
	log.Info().
		Int("online_zips", stats.OnlineZipFilled).
		Int("international_zips", stats.InternationalZips).
		Int("dropped_no_label", stats.DroppedNoLabel).
		Msg("Table cleaned")
	writeTable(log, cleaned, *out, dataset.WriteOptions{QuoteAll: true})
}

func runJoin(log zerolog.Logger) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	in := fs.String("in", "out/"+pipeline.CleanFile, "Cleaned transactions CSV")
	usersPath := fs.String("users", "raw/users.csv", "Users CSV")
	cardsPath := fs.String("cards", "raw/cards.csv", "Cards CSV")
	out := fs.String("out", "out/transactions_joined.csv", "Output CSV")
	fs.Parse(os.Args[2:])

	joined, err := join.Transactions(readTable(log, *in), readTable(log, *usersPath), readTable(log, *cardsPath))
	if err != nil {
		log.Fatal().Err(err).Msg("Join failed")
	}
	writeTable(log, joined, *out, dataset.WriteOptions{})
}

func runBalance(log zerolog.Logger) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	in := fs.String("in", "out/transactions_joined.csv", "Joined transactions CSV")
	out := fs.String("out", "out/"+pipeline.BalancedFile, "Output CSV")
	seed := fs.Int64("seed", 42, "Random seed")
	fs.Parse(os.Args[2:])

	balanced, stats, err := balance.Downsample(readTable(log, *in), *seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Balancing failed")
	}
	log.Info().
		Int("fraud", stats.Fraud).
		Int("non_fraud", stats.NonFraud).
		Msg("Classes balanced")
	writeTable(log, balanced, *out, dataset.WriteOptions{})
}

func runDerive(log zerolog.Logger) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	in := fs.String("in", "out/"+pipeline.BalancedFile, "Balanced transactions CSV")
	out := fs.String("out", "out/"+pipeline.FeaturesFile, "Output CSV")
	fs.Parse(os.Args[2:])

	t := readTable(log, *in)
	stats, err := features.Derive(t)
	if err != nil {
		log.Fatal().Err(err).Msg("Feature derivation failed")
	}
	log.Info().
		Int("unparseable_amounts", stats.UnparseableAmounts).
		Int("missing_dates", stats.MissingDates).
		Msg("Features derived")
	writeTable(log, t, *out, dataset.WriteOptions{})
}

func runAugment(log zerolog.Logger) {
	fs := flag.NewFlagSet("augment", flag.ExitOnError)
	in := fs.String("in", "out/"+pipeline.CleanFile, "Cleaned transactions CSV")
	out := fs.String("out", "out/"+pipeline.AugmentedFile, "Output CSV")
	encodersOut := fs.String("encoders", "out/"+pipeline.EncodersFile, "Encoder JSON output")
	window := fs.Int("window", 5, "Sliding window size")
	stride := fs.Int("stride", 1, "Sliding window stride")
	seed := fs.Int64("seed", 42, "Random seed")
	fs.Parse(os.Args[2:])

	t := readTable(log, *in)

	cfg := balance.DefaultAugmentConfig()
	cfg.WindowSize = *window
	cfg.Stride = *stride
	cfg.Seed = *seed

	augmented, stats, err := balance.Augment(t, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Augmentation failed")
	}
	log.Info().
		Int("original_fraud", stats.OriginalFraud).
		Int("synthesized", stats.Synthesized).
		Int("augmented_fraud", stats.AugmentedFraud).
		Int("neighbor_matched", stats.NeighborMatched).
		Int("non_fraud", stats.NonFraud).
		Bool("degraded", stats.Degraded).
		Msg("Augmentation done")

	encoders, err := balance.FitEncoders(t)
	if err != nil {
		log.Fatal().Err(err).Msg("Fitting encoders failed")
	}
	if err := os.MkdirAll(filepath.Dir(*encodersOut), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Creating output directory failed")
	}
	if err := encoders.Save(*encodersOut); err != nil {
		log.Fatal().Err(err).Msg("Saving encoders failed")
	}
	writeTable(log, augmented, *out, dataset.WriteOptions{})
}

func runReport(log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "out/"+pipeline.FeaturesFile, "Feature table CSV")
	encodersPath := fs.String("encoders", "", "Encoder JSON fitted by augment (optional)")
	method := fs.String("method", report.MethodImpurity, "Ranking method: impurity or contribution")
	trees := fs.Int("trees", 100, "Number of trees")
	testFraction := fs.Float64("test-fraction", 0.2, "Held-out fraction")
	seed := fs.Int64("seed", 42, "Random seed")
	out := fs.String("out", "out/"+pipeline.RankingFile, "Ranking CSV output")
	fs.Parse(os.Args[2:])

	var encoders encode.Set
	if *encodersPath != "" {
		var err error
		encoders, err = encode.LoadSet(*encodersPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Loading encoders failed")
		}
	}

	cfg := report.DefaultConfig()
	cfg.Method = *method
	cfg.TestFraction = *testFraction
	cfg.Seed = *seed
	cfg.Forest.Trees = *trees
	cfg.Forest.Seed = *seed

	res, err := report.Run(readTable(log, *in), encoders, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Report failed")
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Creating output directory failed")
	}
	if err := res.WriteCSV(*out); err != nil {
		log.Fatal().Err(err).Msg("Writing ranking failed")
	}
	res.Print(os.Stdout)
}

func runSplit(log zerolog.Logger) {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	in := fs.String("in", "raw/transactions.csv", "Transactions CSV")
	dir := fs.String("dir", "out/by_client", "Target directory")
	fs.Parse(os.Args[2:])

	t := readTable(log, *in)
	keys, parts, err := t.SplitByColumn("client_id")
	if err != nil {
		log.Fatal().Err(err).Msg("Split failed")
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Creating target directory failed")
	}
	for _, k := range keys {
		path := filepath.Join(*dir, fmt.Sprintf("client_%s_transactions.csv", k))
		if err := parts[k].WriteFile(path, dataset.WriteOptions{}); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Writing client file failed")
		}
	}
	log.Info().Int("clients", len(keys)).Str("dir", *dir).Msg("Split done")
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", "raw/transactions.csv", "CSV to inspect")
	top := fs.Int("top", 10, "Top values to show per column")
	fs.Parse(os.Args[2:])

	t := readTable(log, *in)
	fmt.Printf("%s: %d rows, %d columns\n", *in, t.Len(), len(t.Columns))
	for _, col := range t.Columns {
		counts, err := t.ValueCounts(col)
		if err != nil {
			log.Fatal().Err(err).Msg("Inspect failed")
		}
		fmt.Printf("\n%s: %d distinct\n", col, len(counts))
		for i, vc := range counts {
			if i == *top {
				fmt.Printf("  ... %d more\n", len(counts)-i)
				break
			}
			v := vc.Value
			if v == "" {
				v = "<NA>"
			}
			fmt.Printf("  %-24s %d\n", v, vc.Count)
		}
	}
}

func runSample(log zerolog.Logger) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	dir := fs.String("dir", "raw", "Target directory")
	clients := fs.Int("clients", 10, "Number of clients")
	cardsPer := fs.Int("cards-per-client", 2, "Cards per client")
	transactions := fs.Int("transactions", 600, "Number of transactions")
	fraudRate := fs.Float64("fraud-rate", 0.05, "Fraction of transactions labeled fraudulent")
	seed := fs.Int64("seed", 42, "Random seed")
	fs.Parse(os.Args[2:])

	stats, err := sample.Generate(*dir, sample.Config{
		Clients:        *clients,
		CardsPerClient: *cardsPer,
		Transactions:   *transactions,
		FraudRate:      *fraudRate,
		Seed:           *seed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Sample generation failed")
	}
	log.Info().
		Int("clients", stats.Clients).
		Int("cards", stats.Cards).
		Int("transactions", stats.Transactions).
		Int("fraud", stats.Fraud).
		Str("dir", *dir).
		Msg("Sample dataset written")
}

func runAll(log zerolog.Logger) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	transactions := fs.String("transactions", "raw/transactions.csv", "Raw transactions CSV")
	labelsPath := fs.String("labels", "raw/fraud_labels.csv", "Fraud labels CSV")
	mccPath := fs.String("mcc-codes", "raw/mcc_codes.json", "MCC category JSON")
	usersPath := fs.String("users", "raw/users.csv", "Users CSV")
	cardsPath := fs.String("cards", "raw/cards.csv", "Cards CSV")
	outDir := fs.String("out-dir", "out", "Output directory")
	seed := fs.Int64("seed", 42, "Random seed")
	fs.Parse(os.Args[2:])

	cfg := pipeline.Config{
		TransactionsPath: *transactions,
		FraudLabelsPath:  *labelsPath,
		MCCCodesPath:     *mccPath,
		UsersPath:        *usersPath,
		CardsPath:        *cardsPath,
		OutDir:           *outDir,
		Seed:             *seed,
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Creating output directory failed")
	}

	manifest, err := pipeline.OpenManifest(cfg.OutPath(pipeline.ManifestFile))
	if err != nil {
		log.Fatal().Err(err).Msg("Opening run manifest failed")
	}
	state := &pipeline.State{Config: cfg, Manifest: manifest}

	ctx := logger.WithContext(context.Background(), log)
	if err := pipeline.NewPreparationPipeline().Execute(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("Pipeline failed")
	}
	state.Report.Print(os.Stdout)
	fmt.Println("Pipeline completed successfully.")
}
