package booking

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

func TestConcurrentConfirm_SingleWinner(t *testing.T) {
	f := newFixture(t, domain.HoldSoft)

	const n = 25
	ids := make([]*models.Booking, n)
	for i := range ids {
		offset := time.Duration(i) * time.Minute
		ids[i] = f.create(at(10, 0).Add(offset), at(11, 0).Add(offset))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for _, b := range ids {
		wg.Add(1)
		go func(b *models.Booking) {
			defer wg.Done()
			_, err := f.move(f.sitter, b.ID, domain.StatusConfirmed, "")

			mu.Lock()
			defer mu.Unlock()
			var conflict *domain.SchedulingConflictError
			switch {
			case err == nil:
				wins++
			case errors.As(err, &conflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(b)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)

	confirmed := domain.StatusConfirmed
	list, err := f.store.ListBySitter(context.Background(), f.sitter.ID, &confirmed)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConcurrentCreate_FirmHoldSingleWinner(t *testing.T) {
	f := newFixture(t, domain.HoldFirm)

	const n = 25
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			offset := time.Duration(i%10) * time.Minute
			_, err := f.lc.Create.Execute(context.Background(), f.owner, f.input(at(10, 0).Add(offset), at(11, 0).Add(offset)))

			mu.Lock()
			defer mu.Unlock()
			var conflict *domain.SchedulingConflictError
			switch {
			case err == nil:
				wins++
			case !errors.As(err, &conflict):
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	list, err := f.store.ListBySitter(context.Background(), f.sitter.ID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// TestRandomOperations_KeepInvariants drives a seeded mix of requests and
// transitions by every kind of actor and re-checks the global invariants
// after each step.
func TestRandomOperations_KeepInvariants(t *testing.T) {
	for _, policy := range []domain.HoldPolicy{domain.HoldSoft, domain.HoldFirm} {
		t.Run(string(policy), func(t *testing.T) {
			f := newFixture(t, policy)
			rng := rand.New(rand.NewSource(7))
			actors := []domain.Actor{f.owner, f.sitter, f.admin, f.stranger}
			statuses := domain.AllStatuses()

			var created []*models.Booking
			for step := 0; step < 400; step++ {
				if len(created) == 0 || rng.Intn(3) == 0 {
					start := at(6, 0).Add(time.Duration(rng.Intn(48)) * 15 * time.Minute)
					end := start.Add(time.Duration(1+rng.Intn(8)) * 15 * time.Minute)
					if b, err := f.lc.Create.Execute(context.Background(), f.owner, f.input(start, end)); err == nil {
						created = append(created, b)
					}
				} else {
					b := created[rng.Intn(len(created))]
					actor := actors[rng.Intn(len(actors))]
					target := statuses[rng.Intn(len(statuses))]
					_, _ = f.move(actor, b.ID, target, "random reason")
				}

				assertInvariants(t, f)
			}
		})
	}
}

func assertInvariants(t *testing.T, f *fixture) {
	t.Helper()

	all, err := f.store.ListBySitter(context.Background(), f.sitter.ID, nil)
	require.NoError(t, err)

	for i, a := range all {
		require.NoError(t, domain.CheckInvariants(&a))
		assert.False(t, a.UpdatedAt.Before(a.CreatedAt))

		switch domain.Status(a.Status) {
		case domain.StatusCompleted:
			fee, err := f.store.GetPlatformFee(context.Background(), a.ID)
			require.NoError(t, err)
			assert.True(t, fee.BaseAmount.Equal(a.TotalPrice))
			assert.True(t, fee.FeeAmount.Add(fee.NetAmount).Equal(a.TotalPrice))
			require.NotNil(t, a.ActualStartTime)
			require.NotNil(t, a.ActualEndTime)
		case domain.StatusInProgress:
			require.NotNil(t, a.ActualStartTime)
		}

		if !domain.Status(a.Status).Blocking() {
			continue
		}
		for _, b := range all[i+1:] {
			if domain.Status(b.Status).Blocking() {
				require.False(t,
					domain.Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime),
					"blocking bookings %s and %s overlap", a.ID, b.ID,
				)
			}
		}
	}
}
