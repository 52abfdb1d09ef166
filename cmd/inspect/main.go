package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/eloss/internal/logging"
	"github.com/danielpatrickdp/eloss/internal/tablestore"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the table database")
	last := flag.Int("last", 20, "show N most recent entries")
	builds := flag.Bool("builds", false, "show the build log instead of the stored tables")
	remove := flag.String("delete", "", "delete the table fingerprint/name")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/tables.db [--last N] [--builds] [--delete fingerprint/name] [--json]")
		os.Exit(2)
	}

	store, err := tablestore.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *remove != "":
		err = runDelete(store, *remove)
	case *builds:
		err = runBuildMode(store, *last, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	Dims        int    `json:"dims"`
	Nodes       int    `json:"nodes"`
	BuildID     string `json:"build_id"`
	CreatedAt   string `json:"created_at"`
}

func runListMode(store *tablestore.Store, last int, jsonOut bool) error {
	records, err := store.List(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no tables found")
		return nil
	}

	rows := make([]listRow, len(records))
	for i, rec := range records {
		rows[i] = listRow{
			Fingerprint: rec.Key.Hex(),
			Name:        rec.Key.Name,
			Dims:        rec.Dims,
			Nodes:       rec.Nodes,
			BuildID:     rec.BuildID,
			CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-16s  %-14s  %4s  %7s  %-8s  %s\n", "Fingerprint", "Name", "Dims", "Values", "Build", "Time")
	fmt.Printf("%-16s+-%-14s+-%4s+-%7s+-%-8s+-%s\n",
		"----------------", "--------------", "----", "-------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-16s  %-14s  %4d  %7d  %-8s  %s\n",
			r.Fingerprint, r.Name, r.Dims, r.Nodes, shortID(r.BuildID), r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region build-mode

type buildRow struct {
	BuildID     string  `json:"build_id"`
	Fingerprint string  `json:"fingerprint"`
	Name        string  `json:"name"`
	Source      string  `json:"source"`
	Nodes       int     `json:"nodes"`
	DurationMS  float64 `json:"duration_ms"`
	CreatedAt   string  `json:"created_at"`
}

func runBuildMode(store *tablestore.Store, last int, jsonOut bool) error {
	entries, err := logging.ListBuilds(store.DB(), last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no builds found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]buildRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = buildRow{
			BuildID:     e.BuildID,
			Fingerprint: e.Fingerprint,
			Name:        e.Name,
			Source:      e.Source,
			Nodes:       e.Nodes,
			DurationMS:  e.Duration.Seconds() * 1000,
			CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-8s  %-16s  %-14s  %-7s  %7s  %10s  %s\n", "Build", "Fingerprint", "Name", "Source", "Values", "Time [ms]", "Created")
	fmt.Printf("%-8s+-%-16s+-%-14s+-%-7s+-%7s+-%10s+-%s\n",
		"--------", "----------------", "--------------", "-------", "-------", "----------", "--------------------")
	var built, loaded int
	for _, r := range rows {
		fmt.Printf("%-8s  %-16s  %-14s  %-7s  %7d  %10.1f  %s\n",
			shortID(r.BuildID), r.Fingerprint, r.Name, r.Source, r.Nodes, r.DurationMS, r.CreatedAt)
		switch r.Source {
		case logging.SourceBuilt:
			built++
		case logging.SourceLoaded:
			loaded++
		}
	}
	fmt.Printf("\nSummary: %d built, %d loaded\n", built, loaded)
	return nil
}

// #endregion build-mode

// #region delete

func runDelete(store *tablestore.Store, id string) error {
	key, err := parseKey(id)
	if err != nil {
		return err
	}
	if err := store.Delete(key); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", key)
	return nil
}

func parseKey(id string) (tablestore.Key, error) {
	fp, name, ok := strings.Cut(id, "/")
	if !ok || name == "" {
		return tablestore.Key{}, fmt.Errorf("table id %q: want fingerprint/name", id)
	}
	v, err := strconv.ParseUint(fp, 16, 64)
	if err != nil {
		return tablestore.Key{}, fmt.Errorf("parse fingerprint %q: %w", fp, err)
	}
	return tablestore.Key{Fingerprint: v, Name: name}, nil
}

// #endregion delete

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
