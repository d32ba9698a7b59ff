package chart_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/districtviz/pkg/chart"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/indicator"
)

func Example() {
	ds := district.Dataset{
		{ID: "101", Label: "Manhattan 1", Values: map[string]float64{"poverty_rate": 9.1}},
		{ID: "102", Label: "Manhattan 2", Values: map[string]float64{"poverty_rate": 12.4}},
		{ID: "103", Label: "Manhattan 3", Values: map[string]float64{"poverty_rate": 24.3}},
	}
	sorted := indicator.Sort(ds, "poverty_rate", "102")

	c, err := chart.New(chart.Options{Column: "poverty_rate", Unit: "%"})
	if err != nil {
		panic(err)
	}
	c.Render(context.Background(), 300, sorted)
	fmt.Println(c.Tooltip().HTML)

	c.PointerEnter("103")
	fmt.Println(c.Tooltip().HTML)
	// Output:
	// Manhattan 2: <strong>12.4%</strong>
	// Manhattan 3: <strong>24.3%</strong>
}
