package marketdata

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// OptionSymbol formats an OCC-style contract ticker:
// O:<root><YYMMDD><C|P><strike*1000 padded to 8 digits>.
func OptionSymbol(underlying string, expiry time.Time, typ pricing.OptionType, strike float64) string {
	cp := "C"
	if typ == pricing.Put {
		cp = "P"
	}
	return fmt.Sprintf("O:%s%s%s%08d",
		strings.ToUpper(strings.TrimSpace(underlying)),
		expiry.UTC().Format("060102"),
		cp,
		int(math.Round(strike*1000)),
	)
}
