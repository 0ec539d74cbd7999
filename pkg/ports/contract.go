package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/pageflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunErrorJournalContract runs a suite of tests to verify that an ErrorJournal implementation
// adheres to the defined interface contract. The journal must start empty.
func RunErrorJournalContract(t *testing.T, journal ErrorJournal) {
	ctx := context.Background()
	invocationPrefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Empty", func(t *testing.T) {
		records, err := journal.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Record and Recent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			err := journal.Record(ctx, domain.ErrorRecord{
				Timestamp:    time.Now().UTC(),
				InvocationID: fmt.Sprintf("%s-%d", invocationPrefix, i),
				Page:         "orders",
				Route:        "/orders/{id}",
				Error:        fmt.Sprintf("boom %d", i),
			})
			require.NoError(t, err, "Record should not return error")
		}

		records, err := journal.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, records, 3)

		// Newest first
		assert.Equal(t, invocationPrefix+"-2", records[0].InvocationID)
		assert.Equal(t, invocationPrefix+"-0", records[2].InvocationID)
		assert.Equal(t, "orders", records[0].Page)
		assert.Equal(t, "boom 2", records[0].Error)
	})

	t.Run("Limit", func(t *testing.T) {
		records, err := journal.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("Panic Fields", func(t *testing.T) {
		err := journal.Record(ctx, domain.ErrorRecord{
			InvocationID: invocationPrefix + "-panic",
			Page:         "boom",
			Error:        "panic: kaput",
			Panic:        true,
			Stack:        "goroutine 1 [running]:",
		})
		require.NoError(t, err)

		records, err := journal.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Panic)
		assert.Equal(t, "goroutine 1 [running]:", records[0].Stack)
	})
}
