package chart

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/schedule"
)

func TestComponentRendersWhenDataResolves(t *testing.T) {
	release := make(chan struct{})
	src := district.SourceFunc(func(ctx context.Context) (district.Dataset, error) {
		<-release
		return rows(10, 30, 20), nil
	})
	comp := NewComponent(mustChart(t, Options{Column: "v"}), district.NewFuture(src, "test"), 300, WithSelected("103"))
	defer comp.Close()

	if comp.State() != district.StatePending {
		t.Fatalf("State() = %v before load", comp.State())
	}

	close(release)
	_, ok, err := comp.Refresh(context.Background())
	if err != nil || !ok {
		t.Fatalf("Refresh() = %v, %v", ok, err)
	}
	if comp.State() != district.StateReady {
		t.Errorf("State() = %v, want ready", comp.State())
	}

	s := comp.Chart().Scene()
	var order []string
	for _, b := range s.Bars {
		order = append(order, b.Key)
	}
	if fmt.Sprint(order) != "[102 103 101]" {
		t.Errorf("bar order = %v, want descending by value", order)
	}
	if s.Selected != "103" || s.Bars[1].Fill != DefaultPalette().Emphasis {
		t.Errorf("selected = %q, fill %q", s.Selected, s.Bars[1].Fill)
	}
}

func TestComponentNonFiniteValues(t *testing.T) {
	ds := rows(10, math.NaN(), math.Inf(1), 20)
	ds[0].Values["moe"] = math.Inf(-1)
	comp := NewComponent(mustChart(t, Options{Column: "v", MoEColumn: "moe"}), district.NewFuture(district.StaticSource(ds), "static"), 300)
	defer comp.Close()

	_, ok, err := comp.Refresh(context.Background())
	if err != nil || !ok {
		t.Fatalf("Refresh() = %v, %v", ok, err)
	}

	s := comp.Chart().Scene()
	var order []string
	for _, b := range s.Bars {
		order = append(order, b.Key)
	}
	if fmt.Sprint(order) != "[104 101 102 103]" {
		t.Errorf("bar order = %v, non-finite values should sort as zero", order)
	}
	for _, set := range [][]Rect{s.Bars, s.MoEs} {
		for _, r := range set {
			for _, f := range []float64{r.X, r.Y, r.Width, r.Height} {
				if math.IsNaN(f) || math.IsInf(f, 0) {
					t.Fatalf("rect %s has non-finite geometry: %+v", r.Key, r)
				}
			}
		}
	}
}

func TestComponentFailedLoad(t *testing.T) {
	src := district.SourceFunc(func(context.Context) (district.Dataset, error) {
		return nil, fmt.Errorf("boom")
	})
	comp := NewComponent(mustChart(t, Options{Column: "v"}), district.NewFuture(src, "broken"), 300)
	defer comp.Close()

	_, ok, err := comp.Refresh(context.Background())
	if err == nil || ok {
		t.Fatalf("Refresh() = %v, %v; want failure", ok, err)
	}
	if comp.State() != district.StateFailed {
		t.Errorf("State() = %v, want failed", comp.State())
	}
	if !errors.Is(comp.Err(), errors.ErrCodeDataLoadFailed) {
		t.Errorf("Err() = %v, want DATA_LOAD_FAILED", comp.Err())
	}
}

func TestComponentCancelledStaysPending(t *testing.T) {
	src := district.SourceFunc(func(ctx context.Context) (district.Dataset, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	comp := NewComponent(mustChart(t, Options{Column: "v"}), district.NewFuture(src, "slow"), 300)
	defer comp.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := comp.Refresh(ctx); err == nil {
		t.Fatal("Refresh() succeeded on a cancelled load")
	}
	if comp.State() != district.StatePending {
		t.Errorf("State() = %v, want pending", comp.State())
	}
}

func TestComponentMemoizesSort(t *testing.T) {
	comp := NewComponent(mustChart(t, Options{Column: "v"}), district.Resolved(rows(1, 2, 3)), 300)
	defer comp.Close()
	ctx := context.Background()

	comp.Refresh(ctx)
	comp.Refresh(ctx)
	if comp.SortRuns() != 1 {
		t.Errorf("SortRuns() = %d after identical refreshes, want 1", comp.SortRuns())
	}
	comp.Select("102")
	comp.Refresh(ctx)
	if comp.SortRuns() != 2 {
		t.Errorf("SortRuns() = %d after selection change, want 2", comp.SortRuns())
	}
	if comp.Chart().Renders() != 3 {
		t.Errorf("Renders() = %d, want 3", comp.Chart().Renders())
	}
}

func TestComponentCoalescesResize(t *testing.T) {
	clock := schedule.NewManualClock()
	comp := NewComponent(mustChart(t, Options{Column: "v"}), district.Resolved(rows(3, 2, 1)), 300, WithClock(clock))
	defer comp.Close()
	comp.Refresh(context.Background())
	before := comp.Chart().Renders()

	for w := 310.0; w <= 400; w += 10 {
		comp.NotifyResize(w)
		clock.Advance(time.Millisecond)
	}
	clock.Advance(schedule.DefaultFrame)

	if got := comp.Chart().Renders() - before; got != 1 {
		t.Errorf("redraws = %d for one resize burst, want 1", got)
	}
	if w := comp.Chart().Scene().Width; w != 400 {
		t.Errorf("width = %v, want last notified 400", w)
	}
}
