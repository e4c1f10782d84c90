package service

import (
	"alcyxob/sets-tracker/internal/observability"
	"alcyxob/sets-tracker/internal/repository"
	"log"
	"strings"
)

// driftColumn returns the optional column a store error complains about, if
// the error looks like a missing-column error. Columns in skip are ignored.
func driftColumn(err error, skip []string) (string, bool) {
	if err == nil {
		return "", false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "schema cache") && !strings.Contains(msg, "does not exist") {
		return "", false
	}
	for _, col := range repository.OptionalColumns {
		if strings.Contains(msg, col) && !contains(skip, col) {
			return col, true
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func stripColumns(row repository.Row, drop []string) repository.Row {
	for _, col := range drop {
		row = row.Without(col)
	}
	return row
}

// withDriftRetry runs write, and each time the store rejects an optional
// column, runs it again with that column dropped. Each column is dropped once.
func withDriftRetry[T any](operation string, write func(drop []string) (T, error)) (T, error) {
	var drop []string
	for {
		out, err := write(drop)
		col, ok := driftColumn(err, drop)
		if !ok {
			return out, err
		}
		log.Printf("WARN: %s rejected column %q (%v); retrying without it", operation, col, err)
		observability.RecordSchemaDrift(operation, col)
		drop = append(drop, col)
	}
}
