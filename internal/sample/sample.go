// Package sample generates a small synthetic set of schema-correct input
// files for smoke runs and tests.
package sample

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/dvloznov/fraudprep/internal/dataset"
)

// Config controls the size and shape of the generated dataset.
type Config struct {
	Clients        int
	CardsPerClient int
	Transactions   int
	// FraudRate is the fraction of transactions labeled fraudulent.
	FraudRate float64
	Seed      int64
}

// DefaultConfig generates a dataset small enough for tests but large
// enough for every stage to have work to do.
func DefaultConfig() Config {
	return Config{
		Clients:        10,
		CardsPerClient: 2,
		Transactions:   600,
		FraudRate:      0.05,
		Seed:           42,
	}
}

// Stats reports what was written.
type Stats struct {
	Clients      int
	Cards        int
	Transactions int
	Fraud        int
}

var mccCategories = map[string]string{
	"5411": "Grocery Stores",
	"5812": "Eating Places and Restaurants",
	"5912": "Drug Stores and Pharmacies",
	"4121": "Taxicabs and Limousines",
	"5999": "Miscellaneous Retail Stores",
}

var cities = []struct {
	city, state, zip string
}{
	{"La Verne", "CA", "91750"},
	{"Atlanta", "GA", "30301"},
	{"Crown Point", "IN", "46307"},
	{"Houston", "TX", "77001"},
	{"Monterey Park", "CA", "91754"},
}

var countries = []string{"ITALY", "MEXICO", "JAPAN"}

// Generate writes transactions.csv, users.csv, cards.csv, fraud_labels.csv
// and mcc_codes.json under dir. Deterministic for a given seed.
func Generate(dir string, cfg Config) (Stats, error) {
	var st Stats
	if cfg.Clients < 1 || cfg.CardsPerClient < 1 || cfg.Transactions < 1 {
		return st, fmt.Errorf("sample: counts must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return st, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	users := generateUsers(cfg, rng)
	cards := generateCards(cfg, rng)
	txs, labels, fraud := generateTransactions(cfg, rng)
	st = Stats{
		Clients:      users.Len(),
		Cards:        cards.Len(),
		Transactions: txs.Len(),
		Fraud:        fraud,
	}

	files := map[string]*dataset.Table{
		"users.csv":        users,
		"cards.csv":        cards,
		"transactions.csv": txs,
		"fraud_labels.csv": labels,
	}
	for name, t := range files {
		if err := t.WriteFile(filepath.Join(dir, name), dataset.WriteOptions{}); err != nil {
			return st, err
		}
	}

	codes, err := json.MarshalIndent(mccCategories, "", "  ")
	if err != nil {
		return st, err
	}
	return st, os.WriteFile(filepath.Join(dir, "mcc_codes.json"), codes, 0o644)
}

func generateUsers(cfg Config, rng *rand.Rand) *dataset.Table {
	t := dataset.New(
		"id", "current_age", "retirement_age", "birth_year", "birth_month",
		"gender", "address", "per_capita_income", "yearly_income",
		"total_debt", "credit_score", "num_credit_cards",
	)
	for i := 0; i < cfg.Clients; i++ {
		age := 22 + rng.Intn(50)
		gender := "Female"
		if rng.Intn(2) == 0 {
			gender = "Male"
		}
		t.AppendRow([]string{
			strconv.Itoa(i),
			strconv.Itoa(age),
			"67",
			strconv.Itoa(2020 - age),
			strconv.Itoa(1 + rng.Intn(12)),
			gender,
			fmt.Sprintf("%d Main Street", 100+rng.Intn(900)),
			fmt.Sprintf("$%d", 15000+rng.Intn(40000)),
			fmt.Sprintf("$%d", 25000+rng.Intn(80000)),
			fmt.Sprintf("$%d", rng.Intn(120000)),
			strconv.Itoa(550 + rng.Intn(300)),
			strconv.Itoa(1 + rng.Intn(5)),
		})
	}
	return t
}

func generateCards(cfg Config, rng *rand.Rand) *dataset.Table {
	t := dataset.New(
		"id", "client_id", "card_brand", "card_type", "card_number",
		"expires", "cvv", "has_chip", "num_cards_issued", "credit_limit",
		"acct_open_date", "year_pin_last_changed", "card_on_dark_web",
	)
	brands := []string{"Visa", "Mastercard", "Amex"}
	id := 0
	for c := 0; c < cfg.Clients; c++ {
		for k := 0; k < cfg.CardsPerClient; k++ {
			openYear := 2008 + rng.Intn(12)
			t.AppendRow([]string{
				strconv.Itoa(id),
				strconv.Itoa(c),
				brands[rng.Intn(len(brands))],
				"Debit",
				fmt.Sprintf("4%015d", rng.Int63n(1e15)),
				fmt.Sprintf("%02d/%d", 1+rng.Intn(12), 2022+rng.Intn(6)),
				fmt.Sprintf("%03d", rng.Intn(1000)),
				"YES",
				strconv.Itoa(1 + rng.Intn(2)),
				fmt.Sprintf("$%d", 5000+rng.Intn(20000)),
				fmt.Sprintf("%02d/%d", 1+rng.Intn(12), openYear),
				strconv.Itoa(openYear + rng.Intn(5)),
				"No",
			})
			id++
		}
	}
	return t
}

func generateTransactions(cfg Config, rng *rand.Rand) (txs, labels *dataset.Table, fraud int) {
	txs = dataset.New(
		"id", "date", "client_id", "card_id", "amount", "use_chip",
		"merchant_id", "merchant_city", "merchant_state", "zip", "mcc", "errors",
	)
	labels = dataset.New("id", "Status")

	mccs := make([]string, 0, len(mccCategories))
	for code := range mccCategories {
		mccs = append(mccs, code)
	}
	// map iteration order is not stable; sort for determinism
	sort.Strings(mccs)

	totalCards := cfg.Clients * cfg.CardsPerClient
	minute := 0
	for i := 0; i < cfg.Transactions; i++ {
		cardID := i % totalCards
		clientID := cardID / cfg.CardsPerClient
		minute += 10 + rng.Intn(200)
		ts := baseTime(minute)

		merchantID, _ := uuid.NewRandomFromReader(rng)
		city, state, zip := pickLocation(rng)

		amount := fmt.Sprintf("$%d.%02d", 1+rng.Intn(500), rng.Intn(100))
		if rng.Intn(40) == 0 {
			amount = fmt.Sprintf("($%d.%02d)", 1+rng.Intn(100), rng.Intn(100))
		}
		errCell := ""
		if rng.Intn(25) == 0 {
			errCell = "Technical Glitch"
		}
		useChip := "Swipe Transaction"
		if rng.Intn(2) == 0 {
			useChip = "Chip Transaction"
		}

		txs.AppendRow([]string{
			strconv.Itoa(i),
			ts,
			strconv.Itoa(clientID),
			strconv.Itoa(cardID),
			amount,
			useChip,
			merchantID.String(),
			city,
			state,
			zip,
			mccs[rng.Intn(len(mccs))],
			errCell,
		})

		status := "No"
		if rng.Float64() < cfg.FraudRate {
			status = "Yes"
			fraud++
		}
		labels.AppendRow([]string{strconv.Itoa(i), status})
	}
	return txs, labels, fraud
}

// pickLocation returns a US city, an online merchant, or an international
// merchant with the zip left missing.
func pickLocation(rng *rand.Rand) (city, state, zip string) {
	switch rng.Intn(10) {
	case 0:
		return "ONLINE", "", ""
	case 1:
		return "Rome", countries[rng.Intn(len(countries))], ""
	default:
		loc := cities[rng.Intn(len(cities))]
		return loc.city, loc.state, loc.zip
	}
}

// baseTime spreads transactions forward from a fixed origin.
func baseTime(minutes int) string {
	day := minutes / (24 * 60)
	rem := minutes % (24 * 60)
	return fmt.Sprintf("2019-%02d-%02d %02d:%02d:00",
		1+(day/28)%12, 1+day%28, rem/60, rem%60)
}
