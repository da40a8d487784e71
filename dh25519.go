package noise

import (
	"errors"
	"io"
	"math/big"

	"golang.org/x/crypto/curve25519"
)

// DH25519 is the Curve25519 Diffie-Hellman function ("25519" in Noise
// protocol names), operating over golang.org/x/crypto/curve25519.
type DH25519 struct{}

func (DH25519) DHName() string { return "25519" }

func (DH25519) DHLen() int { return 32 }

// GenerateKeypair produces a fresh Curve25519 keypair. The private bytes
// are stored as read from random; curve25519.X25519 clamps the scalar
// internally when it is used.
func (DH25519) GenerateKeypair(random io.Reader) (DHKey, error) {
	priv := NewSensitive(32)
	if _, err := io.ReadFull(random, priv.Bytes()); err != nil {
		return DHKey{}, err
	}
	pub, err := curve25519.X25519(priv.Bytes(), curve25519.Basepoint)
	if err != nil {
		priv.Zero()
		return DHKey{}, err
	}
	return DHKey{Private: priv, Public: pub}, nil
}

// DH performs X25519(privkey, pubkey). It returns ErrInvalidPublicKey if
// the result is the all-zero point, which curve25519.X25519 rejects as
// coming from a low-order input.
func (DH25519) DH(privkey *Sensitive, pubkey []byte) ([]byte, error) {
	out, err := curve25519.X25519(privkey.Bytes(), pubkey)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return out, nil
}

// curve25519 field/curve constants for the Elligator2 map, used only by
// the optional EllipticDH capability below. p = 2^255 - 19, the
// Montgomery coefficient A = 486662, and the fixed non-square u = 2 used
// by the standard Curve25519 Elligator2 instantiation (valid because
// p ≡ 5 (mod 8), so 2 is a quadratic non-residue mod p).
var (
	fieldP = mustBigFromHex("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffed")
	curveA = big.NewInt(486662)
	nonQR  = big.NewInt(2)
)

func mustBigFromHex(h string) *big.Int {
	n, ok := new(big.Int).SetString(h, 16)
	if !ok {
		panic("noise: bad constant")
	}
	return n
}

func feFromLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	be[0] &= 0x7f // clear the top bit, per the Elligator2 representative encoding
	n := new(big.Int).SetBytes(be)
	return n.Mod(n, fieldP)
}

func feToLE(n *big.Int) []byte {
	be := new(big.Int).Mod(n, fieldP).Bytes()
	out := make([]byte, 32)
	for i, v := range be {
		out[len(be)-1-i] = v
	}
	return out
}

// legendre returns 1 if n is a nonzero quadratic residue mod fieldP, -1
// if it is a non-residue, and 0 if n ≡ 0.
func legendre(n *big.Int) int {
	if n.Sign() == 0 {
		return 0
	}
	exp := new(big.Int).Sub(fieldP, big.NewInt(1))
	exp.Rsh(exp, 1)
	r := new(big.Int).Exp(n, exp, fieldP)
	if r.Cmp(big.NewInt(1)) == 0 {
		return 1
	}
	return -1
}

func feInverse(n *big.Int) *big.Int {
	exp := new(big.Int).Sub(fieldP, big.NewInt(2))
	return new(big.Int).Exp(n, exp, fieldP)
}

func feSqrt(n *big.Int) (*big.Int, bool) {
	if legendre(n) == -1 {
		return nil, false
	}
	// fieldP ≡ 5 (mod 8): Atkin's square root algorithm.
	one := big.NewInt(1)
	two := big.NewInt(2)
	four := big.NewInt(4)
	eight := big.NewInt(8)

	exp := new(big.Int).Sub(fieldP, big.NewInt(5))
	exp.Div(exp, eight) // (p-5)/8

	beta := new(big.Int).Exp(n, exp, fieldP)
	// t = n * beta^2
	t := new(big.Int).Mul(beta, beta)
	t.Mod(t, fieldP)
	t.Mul(t, n)
	t.Mod(t, fieldP)

	if t.Cmp(one) == 0 {
		root := new(big.Int).Mul(n, beta)
		root.Mod(root, fieldP)
		return root, true
	}
	// t == p-1: multiply beta by sqrt(-1) = 2^((p-1)/4) mod p.
	sqrtM1Exp := new(big.Int).Sub(fieldP, one)
	sqrtM1Exp.Div(sqrtM1Exp, four)
	sqrtM1 := new(big.Int).Exp(two, sqrtM1Exp, fieldP)

	root := new(big.Int).Mul(n, beta)
	root.Mod(root, fieldP)
	root.Mul(root, sqrtM1)
	root.Mod(root, fieldP)
	return root, true
}

// elligator2Decode maps a 32-byte representative to a Curve25519
// u-coordinate, per Bernstein et al.'s Elligator2 construction.
func elligator2Decode(representative []byte) []byte {
	r := feFromLE(representative)

	rr2 := new(big.Int).Mul(r, r)
	rr2.Mod(rr2, fieldP)
	rr2.Mul(rr2, nonQR)
	rr2.Mod(rr2, fieldP)

	denom := new(big.Int).Add(rr2, big.NewInt(1))
	denom.Mod(denom, fieldP)
	denomInv := feInverse(denom)

	v := new(big.Int).Neg(curveA)
	v.Mul(v, denomInv)
	v.Mod(v, fieldP)

	v2 := new(big.Int).Mul(v, v)
	v2.Mod(v2, fieldP)
	rhs := new(big.Int).Add(v2, new(big.Int).Mul(curveA, v))
	rhs.Mod(rhs, fieldP)
	rhs.Add(rhs, big.NewInt(1))
	rhs.Mul(rhs, v) // v^3 + A*v^2 + v
	rhs.Mod(rhs, fieldP)

	var x *big.Int
	if legendre(rhs) >= 0 {
		x = v
	} else {
		x = new(big.Int).Neg(v)
		x.Sub(x, curveA)
		x.Mod(x, fieldP)
	}
	return feToLE(x)
}

// elligator2Encode maps a Curve25519 u-coordinate back to a uniform
// representative, when one exists (roughly half of all curve points are
// representable). ok is false when u has no representative.
func elligator2Encode(u []byte, highBit bool) ([]byte, bool) {
	x := feFromLE(u)

	// x+A must be nonzero and -x(x+A)*nonQR^-1 must be a square; if so
	// r = sqrt(-x / ((x+A) * nonQR)).
	xPlusA := new(big.Int).Add(x, curveA)
	xPlusA.Mod(xPlusA, fieldP)
	if xPlusA.Sign() == 0 {
		return nil, false
	}

	num := new(big.Int).Neg(x)
	num.Mod(num, fieldP)

	denom := new(big.Int).Mul(xPlusA, nonQR)
	denom.Mod(denom, fieldP)

	frac := new(big.Int).Mul(num, feInverse(denom))
	frac.Mod(frac, fieldP)

	r, ok := feSqrt(frac)
	if !ok {
		return nil, false
	}
	if highBit {
		r.Neg(r)
		r.Mod(r, fieldP)
	}
	// Elligator2 representatives always have their top bit clear.
	enc := feToLE(r)
	enc[31] &= 0x7f
	return enc, true
}

// GenerateKeypairElligator generates a Curve25519 keypair whose public
// key has an Elligator2 representative, retrying with fresh randomness
// (expected around two attempts) and returning an error if none is found
// within 256 attempts.
func (d DH25519) GenerateKeypairElligator(random io.Reader) (DHKey, []byte, error) {
	for attempt := 0; attempt < 256; attempt++ {
		kp, err := d.GenerateKeypair(random)
		if err != nil {
			return DHKey{}, nil, err
		}
		var highBit [1]byte
		if _, err := io.ReadFull(random, highBit[:]); err != nil {
			return DHKey{}, nil, err
		}
		rep, ok := elligator2Encode(kp.Public, highBit[0]&1 == 1)
		if ok {
			return kp, rep, nil
		}
		kp.Zero()
	}
	return DHKey{}, nil, errors.New("noise: no elligator representative found after repeated attempts")
}

// DHElligator performs a Diffie-Hellman calculation where the peer's
// public key is supplied as an Elligator2 representative rather than a
// raw curve point.
func (d DH25519) DHElligator(privkey *Sensitive, peerRepresentative []byte) ([]byte, error) {
	pub := elligator2Decode(peerRepresentative)
	return d.DH(privkey, pub)
}
