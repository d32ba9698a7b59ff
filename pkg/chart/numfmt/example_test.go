package numfmt_test

import (
	"fmt"

	"github.com/matzehuels/districtviz/pkg/chart/numfmt"
)

func ExamplePattern() {
	f, _ := numfmt.Pattern("0,0.0")
	fmt.Println(f(48213.27))
	// Output: 48,213.3
}
