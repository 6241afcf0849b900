// Package pipeline chains the preparation stages over one shared state,
// recording every stage execution in a run manifest.
package pipeline

import "path/filepath"

// Output file names, relative to Config.OutDir.
const (
	LabeledFile   = "transactions_labeled.csv"
	CleanFile     = "transactions_clean.csv"
	BalancedFile  = "transactions_balanced.csv"
	FeaturesFile  = "transactions_features.csv"
	AugmentedFile = "augmented_for_train.csv"
	EncodersFile  = "encoders.json"
	RankingFile   = "feature_importance.csv"
	ManifestFile  = "runs.json"
)

// Config carries resolved input paths, the output directory and the seed
// shared by every randomized stage.
type Config struct {
	TransactionsPath string
	FraudLabelsPath  string
	MCCCodesPath     string
	UsersPath        string
	CardsPath        string

	OutDir string
	Seed   int64
}

// DefaultConfig points at the conventional raw/ layout.
func DefaultConfig() Config {
	return Config{
		TransactionsPath: "raw/transactions.csv",
		FraudLabelsPath:  "raw/fraud_labels.csv",
		MCCCodesPath:     "raw/mcc_codes.json",
		UsersPath:        "raw/users.csv",
		CardsPath:        "raw/cards.csv",
		OutDir:           "out",
		Seed:             42,
	}
}

// OutPath resolves an output file name against the output directory.
func (c Config) OutPath(name string) string {
	return filepath.Join(c.OutDir, name)
}
