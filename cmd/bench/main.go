package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/fireclass"
)

type Reading struct {
	fireclass.Base
	Sensor string    `fireclass:"sensor"`
	Value  float64   `fireclass:"value"`
	At     time.Time `fireclass:"at"`
	Valid  bool      `fireclass:"valid"`
}

func main() {
	count := flag.Int("count", 1000, "Number of records to create")
	adapter := flag.String("adapter", "bolt", "Store adapter (memory, bolt)")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "fireclass_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := fireclass.Open(ctx,
		fireclass.WithLogger(logger),
		fireclass.WithAdapter(*adapter),
		fireclass.WithPath(filepath.Join(benchDir, "bench.db")),
	)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	readings, err := fireclass.For[Reading](db)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Creating %d records (%s)...\n", *count, *adapter)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	startCreate := time.Now()
	for i := 0; i < *count; i++ {
		r := &Reading{
			Sensor: fmt.Sprintf("s%d", i%10),
			Value:  float64(i) / 10,
			At:     base.Add(time.Duration(i) * time.Minute),
			Valid:  i%3 != 0,
		}
		if _, err := readings.Create(ctx, r); err != nil {
			panic(err)
		}
	}
	create := time.Since(startCreate)

	fmt.Println("Streaming the collection...")
	startStream := time.Now()
	all, err := readings.Stream(ctx).GetAll()
	if err != nil {
		panic(err)
	}
	stream := time.Since(startStream)

	fmt.Println("Running a filtered query...")
	q, err := readings.Where("sensor", fireclass.OpEqual, "s3")
	if err == nil {
		q, err = q.Where("valid", fireclass.OpEqual, true)
	}
	if err != nil {
		panic(err)
	}
	startQuery := time.Now()
	matched, err := q.Stream(ctx).GetAll()
	if err != nil {
		panic(err)
	}
	query := time.Since(startQuery)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d records, %s):\n", *count, *adapter)
	fmt.Printf("  Create: %v (%v/record)\n", create, create/time.Duration(max(*count, 1)))
	fmt.Printf("  Stream: %v (Items: %d)\n", stream, len(all))
	fmt.Printf("  Query:  %v (Items: %d)\n", query, len(matched))
	fmt.Printf("--------------------------------------------------\n")
}
