// Package format renders chain quantities for console output.
package format

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/pirskij/bittensor-quick-register/internal/chain"
	"github.com/pirskij/bittensor-quick-register/internal/crypto"
)

// TAO renders an amount of base units with an adaptive unit: TAO above one
// whole coin, scaled RAO below.
func TAO(rao uint64) string {
	tao := float64(rao) / float64(chain.RaoPerTao)
	switch {
	case tao >= 1000:
		return fmt.Sprintf("%.1fK TAO", tao/1000)
	case tao >= 1:
		return fmt.Sprintf("%.3f TAO", tao)
	case rao >= 1_000_000:
		return fmt.Sprintf("%.1fM RAO", float64(rao)/1e6)
	case rao >= 1_000:
		return fmt.Sprintf("%.1fK RAO", float64(rao)/1e3)
	default:
		return fmt.Sprintf("%d RAO", rao)
	}
}

// HashRate renders attempts-per-duration with H/s units.
func HashRate(attempts uint64, d time.Duration) string {
	rate := float64(attempts) / d.Seconds()
	switch {
	case rate >= 1_000_000:
		return fmt.Sprintf("%.2f MH/s", rate/1_000_000)
	case rate >= 1_000:
		return fmt.Sprintf("%.2f KH/s", rate/1_000)
	default:
		return fmt.Sprintf("%.2f H/s", rate)
	}
}

// Difficulty renders a 256-bit difficulty with a metric suffix.
func Difficulty(d *uint256.Int) string {
	if d == nil {
		return "0"
	}
	v := float64(d.Uint64())
	if d.BitLen() > 64 {
		// Beyond u64 the float conversion saturates, which still picks
		// the right suffix branch below.
		v = 2e19
	}
	switch {
	case d.GtUint64(1_000_000_000_000_000_000):
		return fmt.Sprintf("%.2fE", v/1e18)
	case d.GtUint64(1_000_000_000_000_000):
		return fmt.Sprintf("%.2fP", v/1e15)
	case d.GtUint64(1_000_000_000_000):
		return fmt.Sprintf("%.2fT", v/1e12)
	case d.GtUint64(1_000_000_000):
		return fmt.Sprintf("%.2fG", v/1e9)
	case d.GtUint64(1_000_000):
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return d.Dec()
	}
}

// Account renders an account id as a shortened SS58 address.
func Account(a crypto.AccountID) string {
	return ShortSS58(a.SS58())
}

// ShortSS58 abbreviates an address to its first and last eight characters.
func ShortSS58(ss58 string) string {
	if len(ss58) > 16 {
		return ss58[:8] + "..." + ss58[len(ss58)-8:]
	}
	return ss58
}
