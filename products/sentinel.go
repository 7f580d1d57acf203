// products/sentinel.go
package products

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gewnthar/eof/validity"
)

// ErrNotProduct is returned when a name is not a Sentinel-1 product name.
var ErrNotProduct = errors.New("not a Sentinel-1 product name")

// productNameRegex matches names like
// S1A_IW_SLC__1SDV_20200101T050000_20200101T050027_030600_0381B2_ABCD
var productNameRegex = regexp.MustCompile(
	`^(?P<mission>S1[A-D])_(?P<mode>\w{2})_(?P<type>\w{3})\w_\w{4}_` +
		`(?P<start>\d{8}T\d{6})_(?P<stop>\d{8}T\d{6})_` +
		`(?P<orbit>\d{6})_(?P<take>[0-9A-F]{6})_\w{4}`)

// Product is a Sentinel-1 acquisition identified by its product name.
type Product struct {
	Name          string
	Mission       string // e.g. "S1A"
	Mode          string // e.g. "IW"
	ProductType   string // e.g. "SLC"
	AbsoluteOrbit int
	StartTime     time.Time
	StopTime      time.Time
}

// ParseProduct extracts mission and acquisition window from a product name.
// Directory components and .SAFE/.zip suffixes are stripped first.
func ParseProduct(name string) (*Product, error) {
	base := filepath.Base(strings.TrimRight(strings.TrimSpace(name), `/\`))
	base = strings.TrimSuffix(base, ".zip")
	base = strings.TrimSuffix(base, ".SAFE")

	m := productNameRegex.FindStringSubmatch(base)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotProduct, name)
	}
	group := func(n string) string { return m[productNameRegex.SubexpIndex(n)] }

	start, err := time.Parse(validity.DateFormat, group("start"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse start time of %q: %w", name, err)
	}
	stop, err := time.Parse(validity.DateFormat, group("stop"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stop time of %q: %w", name, err)
	}
	orbit, err := strconv.Atoi(group("orbit"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse absolute orbit of %q: %w", name, err)
	}

	return &Product{
		Name:          base,
		Mission:       group("mission"),
		Mode:          group("mode"),
		ProductType:   strings.TrimRight(group("type"), "_"),
		AbsoluteOrbit: orbit,
		StartTime:     start,
		StopTime:      stop,
	}, nil
}

// Window is the acquisition interval of the product.
func (p *Product) Window() validity.Interval {
	return validity.Interval{Start: p.StartTime, End: p.StopTime}
}

func (p *Product) String() string {
	return p.Name
}

// FindProducts lists the Sentinel-1 products directly inside dir, sorted by name.
// Entries that are not product names are ignored.
func FindProducts(dir string) ([]*Product, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var found []*Product
	for _, e := range entries {
		p, err := ParseProduct(e.Name())
		if err != nil {
			continue
		}
		found = append(found, p)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}
