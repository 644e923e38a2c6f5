package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/polars"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// 加载动态库，并校验编解码指纹
	brg, err := polars.Load("", bridge.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to load bridge: %v", err)
	}
	defer brg.Close()

	fmt.Printf("ABI Version: %d\n", brg.AbiVersion())
	engineVer, err := brg.EngineVersion()
	if err != nil {
		log.Fatalf("Failed to get engine version: %v", err)
	}
	fmt.Printf("Engine Version: %s\n", engineVer)

	fmt.Println("\n=== Sort + Head ===")
	if err := sortHead(brg); err != nil {
		log.Fatalf("sort/head failed: %v", err)
	}

	fmt.Println("\n=== Lazy CSV ===")
	if err := lazyCSV(brg, "polars/testdata/sample.csv"); err != nil {
		log.Fatalf("lazy csv failed: %v", err)
	}
}

func sortHead(brg *bridge.Bridge) error {
	var columns []*polars.Series
	for name, values := range map[string][]int64{
		"day_1": {3, 1, 2},
		"day_2": {30, 10, 20},
		"day_3": {300, 100, 200},
	} {
		s, err := polars.SeriesNew(brg, polars.TypedInt64, name, values)
		if err != nil {
			return err
		}
		defer s.Free()
		columns = append(columns, s)
	}

	df, err := polars.NewDataFrame(brg, columns...)
	if err != nil {
		return err
	}
	defer df.Free()

	sorted, err := df.Sort([]string{"day_1"}, []bool{false}, true)
	if err != nil {
		return err
	}
	defer sorted.Free()

	n := 2
	top, err := sorted.Head(&n)
	if err != nil {
		return err
	}
	defer top.Free()
	return top.Print()
}

func lazyCSV(brg *bridge.Bridge, path string) error {
	// 计划在 Collect 之前的任何一步出错都会延迟到 Collect 报告
	df, err := polars.ScanCSV(brg, path, polars.CSVOptions{}).
		Filter(polars.Col("age").Gt(polars.Lit(25))).
		GroupBy(polars.Cols("city"), true).
		Agg(
			polars.Col("name").Count().Alias("people"),
			polars.Col("score").Mean().Alias("avg_score"),
		).
		Sort([]string{"people"}, []bool{true}, false, true).
		Collect()
	if err != nil {
		return err
	}
	defer df.Free()

	rows, err := df.Rows()
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Printf("%v: %v people, avg score %v\n", row["city"], row["people"], row["avg_score"])
	}
	return nil
}
