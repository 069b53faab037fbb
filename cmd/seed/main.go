package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/database"
	"bookcatalog/internal/platform/logging"
)

var (
	languages  = []string{"en", "es", "fr", "de", "it", "pt", "zh", "ja"}
	publishers = []string{"Penguin", "HarperCollins", "Oxford", "Cambridge", "MIT Press", "Springer", "Wiley", "Elsevier"}
	authors    = []string{"Ada Byron", "Alan Kay", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov", "Donald Knuth", "Frances Allen", "Ken Thompson"}
)

func main() {
	count := flag.Int("count", 100, "Number of books to insert")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated data")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg.DatabaseDSN, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	svc := book.NewService(book.NewPostgresRepo(pool, cfg.QueryTimeout))
	inputs := generateBooks(*count, rand.New(rand.NewSource(*seed)))

	inserted, err := seedBooks(ctx, svc, inputs, log)
	if err != nil {
		log.Fatal("failed to insert books", zap.Int("inserted", inserted), zap.Error(err))
	}

	books, err := svc.List(ctx)
	if err != nil {
		log.Fatal("failed to count books", zap.Error(err))
	}
	log.Info("seed complete", zap.Int("inserted", inserted), zap.Int("total", len(books)))
}

// generateBooks returns n valid create inputs drawn from rng.
func generateBooks(n int, rng *rand.Rand) []book.CreateInput {
	out := make([]book.CreateInput, 0, n)
	for i := 0; i < n; i++ {
		year := 1950 + rng.Intn(75)
		out = append(out, book.CreateInput{
			Title:         fmt.Sprintf("Book Title %d - %s", i+1, randomWord(rng)),
			Author:        authors[rng.Intn(len(authors))],
			Publisher:     publishers[rng.Intn(len(publishers))],
			PublishedDate: fmt.Sprintf("%d-01-01", year),
			PageCount:     100 + rng.Intn(800),
			Language:      languages[rng.Intn(len(languages))],
		})
	}
	return out
}

// seedBooks creates every input through svc and returns how many succeeded
// before the first failure.
func seedBooks(ctx context.Context, svc *book.Service, inputs []book.CreateInput, log *zap.Logger) (int, error) {
	for i, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			return i, err
		}
		if (i+1)%1000 == 0 {
			log.Info("seeding", zap.Int("done", i+1), zap.Int("total", len(inputs)))
		}
	}
	return len(inputs), nil
}

func randomWord(rng *rand.Rand) string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rng.Intn(len(words))]
}
