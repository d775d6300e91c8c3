// Package number implements the exact-rational numeric kernel described by
// the value model: a two-tier representation that keeps arithmetic on a
// fast 64-bit path and promotes to arbitrary precision the moment that path
// would overflow. Every value is exact; floating point never enters the
// picture.
package number

import (
	"fmt"
	"math/big"
	"strings"
)

// precision bounds the number of fractional digits produced by String.
const precision = 10

// Number is either a reduced 64-bit rational (the Machine tier) or an
// arbitrary-precision rational (the Big tier). Once an operand is Big, any
// operation touching it stays Big: promotion never reverses mid-operation.
type Number struct {
	big        bool
	mNum, mDen int64    // machine tier, mDen > 0, gcd-reduced
	bNum, bDen *big.Int // big tier, bDen > 0, gcd-reduced
}

// Zero is the additive identity on the machine tier.
var Zero = Number{mNum: 0, mDen: 1}

// One is the multiplicative identity on the machine tier.
var One = Number{mNum: 1, mDen: 1}

// FromInt64 builds an exact integer on the machine tier.
func FromInt64(v int64) Number {
	return Number{mNum: v, mDen: 1}
}

// FromRatio builds num/den on the machine tier, reduced and overflow-checked;
// a denominator of zero promotes to the big tier's zero-denominator sentinel
// is never produced — callers must not divide by zero (see Div).
func FromRatio(num, den int64) Number {
	if den < 0 {
		num, den = -num, -den
	}
	g := gcdInt64(abs64(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	return Number{mNum: num, mDen: den}
}

// FromBigRatio builds a Number directly on the big tier.
func FromBigRatio(num, den *big.Int) Number {
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(n), d)
	if g.Sign() > 0 && g.Cmp(big.NewInt(1)) != 0 {
		n.Div(n, g)
		d.Div(d, g)
	}
	return Number{big: true, bNum: n, bDen: d}
}

// ParseDecimal reconstructs an exact rational from a decimal literal's
// digits — never by round-tripping through float64. Accepts an optional
// leading '-', an integer part, an optional '.' fractional part. The unit
// suffix, if any, must already be stripped by the caller.
func ParseDecimal(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("number: empty literal")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return Zero, fmt.Errorf("number: invalid digit in %q", s)
		}
	}
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return Zero, fmt.Errorf("number: invalid digit in %q", s)
		}
	}

	digits := intPart + fracPart
	num := new(big.Int)
	if _, ok := num.SetString(digits, 10); !ok {
		return Zero, fmt.Errorf("number: malformed literal %q", s)
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
	if neg {
		num.Neg(num)
	}

	n := FromBigRatio(num, den)
	return n.demoteIfSmall(), nil
}

// demoteIfSmall tries to fit a freshly constructed Big-tier number into the
// Machine tier. This is only safe right after construction from a literal,
// never mid-arithmetic, which is why arithmetic results never call it:
// promotion is one-way for values derived from operations; only the
// initial parse of a literal may land back on the machine tier.
func (n Number) demoteIfSmall() Number {
	if !n.big {
		return n
	}
	if n.bNum.IsInt64() && n.bDen.IsInt64() {
		return Number{mNum: n.bNum.Int64(), mDen: n.bDen.Int64()}
	}
	return n
}

// IsBig reports whether this value currently lives on the arbitrary
// precision tier.
func (n Number) IsBig() bool { return n.big }

func (n Number) asBig() (num, den *big.Int) {
	if n.big {
		return n.bNum, n.bDen
	}
	return big.NewInt(n.mNum), big.NewInt(n.mDen)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func gcdInt64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// checkedMul64 returns a*b and true if it does not overflow int64.
func checkedMul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

// checkedAdd64 returns a+b and true if it does not overflow int64.
func checkedAdd64(a, b int64) (int64, bool) {
	r := a + b
	if (r > a) != (b > 0) && b != 0 {
		return 0, false
	}
	return r, true
}

// binaryOp evaluates a rational operation, attempting the machine tier
// first and promoting to big only when either operand is already Big or
// the machine-tier computation overflows. Results are never demoted back
// to Machine once computed on Big.
func binaryOp(a, b Number, machine func(an, ad, bn, bd int64) (num, den int64, ok bool), big_ func(an, ad, bn, bd *big.Int) (num, den *big.Int)) Number {
	if !a.big && !b.big {
		if num, den, ok := machine(a.mNum, a.mDen, b.mNum, b.mDen); ok {
			return FromRatio(num, den)
		}
	}
	an, ad := a.asBig()
	bn, bd := b.asBig()
	num, den := big_(an, ad, bn, bd)
	return FromBigRatio(num, den)
}

// Add returns a+b.
func Add(a, b Number) Number {
	return binaryOp(a, b,
		func(an, ad, bn, bd int64) (int64, int64, bool) {
			if ad == bd {
				n, ok := checkedAdd64(an, bn)
				return n, ad, ok
			}
			t1, ok1 := checkedMul64(an, bd)
			t2, ok2 := checkedMul64(bn, ad)
			den, ok3 := checkedMul64(ad, bd)
			if !ok1 || !ok2 || !ok3 {
				return 0, 0, false
			}
			n, ok4 := checkedAdd64(t1, t2)
			return n, den, ok4
		},
		func(an, ad, bn, bd *big.Int) (*big.Int, *big.Int) {
			num := new(big.Int).Add(new(big.Int).Mul(an, bd), new(big.Int).Mul(bn, ad))
			den := new(big.Int).Mul(ad, bd)
			return num, den
		})
}

// Sub returns a-b.
func Sub(a, b Number) Number {
	return Add(a, Neg(b))
}

// Neg returns -a.
func Neg(a Number) Number {
	if a.big {
		return Number{big: true, bNum: new(big.Int).Neg(a.bNum), bDen: new(big.Int).Set(a.bDen)}
	}
	if a.mNum != 0 && a.mNum == -a.mNum { // overflow guard for math.MinInt64
		return FromBigRatio(new(big.Int).Neg(big.NewInt(a.mNum)), big.NewInt(a.mDen))
	}
	return Number{mNum: -a.mNum, mDen: a.mDen}
}

// Mul returns a*b.
func Mul(a, b Number) Number {
	return binaryOp(a, b,
		func(an, ad, bn, bd int64) (int64, int64, bool) {
			num, ok1 := checkedMul64(an, bn)
			den, ok2 := checkedMul64(ad, bd)
			return num, den, ok1 && ok2
		},
		func(an, ad, bn, bd *big.Int) (*big.Int, *big.Int) {
			return new(big.Int).Mul(an, bn), new(big.Int).Mul(ad, bd)
		})
}

// Div returns a/b. Division by zero is the caller's responsibility to
// reject — the value layer surfaces it as an error rather than a signed
// infinity.
func Div(a, b Number) Number {
	if b.big {
		return Mul(a, Number{big: true, bNum: new(big.Int).Set(b.bDen), bDen: new(big.Int).Set(b.bNum)})
	}
	return Mul(a, Number{mNum: b.mDen, mDen: b.mNum})
}

// Rem returns the remainder of a/b with the sign of a (matches CSS `%`).
func Rem(a, b Number) Number {
	q := Div(a, b)
	whole := Number{big: q.big}
	if q.big {
		whole.bNum = new(big.Int).Quo(q.bNum, q.bDen)
		whole.bDen = big.NewInt(1)
	} else {
		whole.mNum = q.mNum / q.mDen
		whole.mDen = 1
	}
	return Sub(a, Mul(whole, b))
}

// Abs returns the absolute value.
func Abs(a Number) Number {
	if a.Sign() < 0 {
		return Neg(a)
	}
	return a
}

// Sign returns -1, 0 or 1.
func (n Number) Sign() int {
	if n.big {
		return n.bNum.Sign()
	}
	if n.mNum < 0 {
		return -1
	}
	if n.mNum > 0 {
		return 1
	}
	return 0
}

// IsInteger reports whether the value has no fractional part.
func (n Number) IsInteger() bool {
	if n.big {
		return new(big.Int).Mod(n.bNum, n.bDen).Sign() == 0
	}
	return n.mNum%n.mDen == 0
}

// IsPositive reports n > 0.
func (n Number) IsPositive() bool { return n.Sign() > 0 }

// IsNegative reports n < 0.
func (n Number) IsNegative() bool { return n.Sign() < 0 }

// Cmp returns -1, 0, 1 comparing a to b.
func Cmp(a, b Number) int {
	an, ad := a.asBig()
	bn, bd := b.asBig()
	lhs := new(big.Int).Mul(an, bd)
	rhs := new(big.Int).Mul(bn, ad)
	return lhs.Cmp(rhs)
}

// Equal reports exact equality.
func Equal(a, b Number) bool { return Cmp(a, b) == 0 }

// Floor rounds toward negative infinity.
func Floor(n Number) Number {
	num, den := n.asBig()
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(num, den, m) // Euclidean: floors for positive den
	return (Number{big: true, bNum: q, bDen: big.NewInt(1)}).demoteIfSmall()
}

// Ceil rounds toward positive infinity.
func Ceil(n Number) Number {
	f := Floor(n)
	if Equal(f, n) {
		return f
	}
	return Add(f, One)
}

// Round rounds half away from zero.
func Round(n Number) Number {
	if n.IsNegative() {
		return Neg(Round(Neg(n)))
	}
	half := FromRatio(1, 2)
	return Floor(Add(n, half))
}

// Fract returns the fractional part (n - Floor(n) for non-negative n; for
// negative n it is n - Ceil(n), keeping the sign of n).
func Fract(n Number) Number {
	if n.IsNegative() {
		return Sub(n, Ceil(n))
	}
	return Sub(n, Floor(n))
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi Number) Number {
	if Cmp(n, hi) > 0 {
		return hi
	}
	if Cmp(n, lo) < 0 {
		return lo
	}
	return n
}

// Float64 converts to a float64, for host interop only (never used
// internally for arithmetic).
func (n Number) Float64() float64 {
	num, den := n.asBig()
	f := new(big.Rat).SetFrac(num, den)
	v, _ := f.Float64()
	return v
}

// String renders the number per the display algorithm: up to `precision-1`
// fractional digits, half-away-from-zero rounding on the last digit with
// carry propagation, trailing zeros trimmed.
func (n Number) String() string {
	num, den := n.asBig()
	neg := num.Sign() < 0
	num = new(big.Int).Abs(num)

	intPart := new(big.Int)
	rem := new(big.Int)
	intPart.DivMod(num, den, rem)

	if rem.Sign() == 0 {
		s := intPart.String()
		if neg && intPart.Sign() != 0 {
			s = "-" + s
		}
		return s
	}

	digits := make([]byte, 0, precision)
	roundUp := false
	r := new(big.Int).Set(rem)
	ten := big.NewInt(10)
	for i := 0; i < precision; i++ {
		r.Mul(r, ten)
		d := new(big.Int)
		d.DivMod(r, den, r)
		digit := byte(d.Int64())
		if i == precision-1 {
			// Peek one more digit to decide rounding.
			r2 := new(big.Int).Mul(r, ten)
			nextDigit := new(big.Int).Div(r2, den).Int64()
			if nextDigit >= 5 {
				roundUp = true
			}
		}
		digits = append(digits, '0'+digit)
	}

	if roundUp {
		carry := true
		for i := len(digits) - 1; i >= 0 && carry; i-- {
			if digits[i] == '9' {
				digits[i] = '0'
			} else {
				digits[i]++
				carry = false
			}
		}
		if carry {
			intPart.Add(intPart, big.NewInt(1))
		}
	}

	// Trim trailing zeros.
	end := len(digits)
	for end > 0 && digits[end-1] == '0' {
		end--
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(intPart.String())
	if end > 0 {
		b.WriteByte('.')
		b.Write(digits[:end])
	}
	return b.String()
}
