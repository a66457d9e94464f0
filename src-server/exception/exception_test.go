package exception_test

import (
	"sync"
	"testing"
	"time"

	"schedly/src-server/exception"
	"schedly/src-server/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slot = time.Date(2026, 9, 7, 16, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestApplyTransitions(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	skip, err := exception.Apply(nil, "s1", slot, exception.KindSkip, nil, now)
	require.NoError(t, err)
	assert.Equal(t, exception.KindSkip, skip.Kind)

	again, err := exception.Apply(&skip, "s1", slot, exception.KindSkip, nil, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, skip, again, "re-skipping changes nothing")

	title, err := exception.Apply(nil, "s1", slot, exception.KindOverride, &exception.Override{Title: ptr("Guest lecture")}, now)
	require.NoError(t, err)
	moved, err := exception.Apply(&title, "s1", slot, exception.KindOverride, &exception.Override{Location: ptr("Hall C")}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Guest lecture", *moved.Override.Title, "earlier edit survives")
	assert.Equal(t, "Hall C", *moved.Override.Location)
	assert.Equal(t, now, moved.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), moved.UpdatedAt)

	dropped, err := exception.Apply(&moved, "s1", slot, exception.KindSkip, nil, now)
	require.NoError(t, err)
	assert.Equal(t, exception.KindSkip, dropped.Kind)
	assert.True(t, dropped.Override.IsEmpty())
}

func TestApplyMoveKeepsEditedLength(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	first, err := exception.Apply(nil, "s1", slot, exception.KindOverride, &exception.Override{
		Start: ptr(slot.Add(2 * time.Hour)), End: ptr(slot.Add(3 * time.Hour)),
	}, now)
	require.NoError(t, err)

	moved, err := exception.Apply(&first, "s1", slot, exception.KindOverride, &exception.Override{
		Start: ptr(slot.Add(5 * time.Hour)),
	}, now)
	require.NoError(t, err)
	assert.Equal(t, slot.Add(5*time.Hour), *moved.Override.Start)
	assert.Equal(t, slot.Add(6*time.Hour), *moved.Override.End)
}

func TestApplyRejects(t *testing.T) {
	now := time.Now()
	_, err := exception.Apply(nil, "", slot, exception.KindSkip, nil, now)
	assert.ErrorIs(t, err, exception.ErrInvalid)
	_, err = exception.Apply(nil, "s1", time.Time{}, exception.KindSkip, nil, now)
	assert.ErrorIs(t, err, exception.ErrInvalid)
	_, err = exception.Apply(nil, "s1", slot, exception.KindOverride, nil, now)
	assert.ErrorIs(t, err, exception.ErrInvalid)
	_, err = exception.Apply(nil, "s1", slot, "cancel", nil, now)
	assert.ErrorIs(t, err, exception.ErrInvalid)
	_, err = exception.Apply(nil, "s1", slot, exception.KindOverride, &exception.Override{
		Start: ptr(slot), End: ptr(slot),
	}, now)
	assert.ErrorIs(t, err, exception.ErrInvalid)

	other, _ := exception.Apply(nil, "s2", slot, exception.KindSkip, nil, now)
	_, err = exception.Apply(&other, "s1", slot, exception.KindSkip, nil, now)
	assert.ErrorIs(t, err, exception.ErrInvalid)

	_, err = exception.ParseKind("cancel")
	assert.ErrorIs(t, err, exception.ErrInvalid)
}

func TestRegistryKeepsOneExceptionPerOccurrence(t *testing.T) {
	reg := exception.NewRegistry()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Apply("s1", slot, exception.KindSkip, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, reg.ForSeries("s1"), 1)

	// the same instant in another zone is the same key
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	_, err = reg.Apply("s1", slot.In(la), exception.KindOverride, &exception.Override{Title: ptr("x")})
	require.NoError(t, err)
	assert.Len(t, reg.ForSeries("s1"), 1)

	assert.Equal(t, exception.KindOverride, reg.ForSeries("s1")[0].Kind)

	_, err = reg.Apply("s1", slot.Add(48*time.Hour), exception.KindSkip, nil)
	require.NoError(t, err)
	list := reg.ForSeries("s1")
	require.Len(t, list, 2)
	assert.True(t, list[0].OriginalStart.Before(list[1].OriginalStart))
	assert.Empty(t, reg.ForSeries("nope"))
}

func TestResolve(t *testing.T) {
	occs := make([]recurrence.Occurrence, 3)
	for i := range occs {
		start := slot.Add(time.Duration(i) * 48 * time.Hour)
		occs[i] = recurrence.Occurrence{
			SeriesID: "s1", OriginalStart: start, Start: start, End: start.Add(50 * time.Minute), Title: "Lecture",
		}
	}
	moveTo := occs[2].Start.Add(2 * time.Hour)
	out := exception.Resolve(occs, []exception.Exception{
		{SeriesID: "s1", OriginalStart: occs[0].OriginalStart, Kind: exception.KindSkip},
		{SeriesID: "s1", OriginalStart: occs[2].OriginalStart, Kind: exception.KindOverride, Override: exception.Override{
			Title: ptr("Review"), Start: &moveTo,
		}},
		{SeriesID: "other", OriginalStart: occs[1].OriginalStart, Kind: exception.KindSkip},
	})
	require.Len(t, out, 2)
	assert.False(t, out[0].IsException)
	assert.Equal(t, "Review", out[1].Title)
	assert.True(t, out[1].IsException)
	assert.Equal(t, moveTo, out[1].Start)
	assert.Equal(t, moveTo.Add(50*time.Minute), out[1].End)
	assert.Equal(t, occs[2].OriginalStart, out[1].OriginalStart)
}
