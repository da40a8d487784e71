package noise

import (
	"crypto/hmac"
	"hash"
)

// hkdf implements the two-output HKDF construction from the Noise
// specification (and RFC 5869's Extract-and-Expand, specialized to a
// fixed 1-2 block expansion): given a chaining key and input key
// material, it returns (ck', out2) where ck' is the new chaining key and
// out2 is temp_key material suitable for MixKey. out1 and out2 are
// append-style destination buffers, mirroring hash.Hash.Sum's calling
// convention so callers can reuse backing arrays across invocations.
func hkdf(h func() hash.Hash, out1, out2, chainingKey, inputKeyMaterial []byte) ([]byte, []byte) {
	tempMAC := hmac.New(h, chainingKey)
	tempMAC.Write(inputKeyMaterial)
	tempKey := tempMAC.Sum(nil)

	out1Mac := hmac.New(h, tempKey)
	out1Mac.Write([]byte{0x01})
	out1 = out1Mac.Sum(out1)

	out2Mac := hmac.New(h, tempKey)
	out2Mac.Write(out1)
	out2Mac.Write([]byte{0x02})
	out2 = out2Mac.Sum(out2)

	return out1, out2
}

// hkdf3 is the three-output form used by MixKeyAndHash: it additionally
// returns out3, derived by chaining a third HMAC invocation off out2.
func hkdf3(h func() hash.Hash, out1, out2, out3, chainingKey, inputKeyMaterial []byte) ([]byte, []byte, []byte) {
	// Derive the temp key before hkdf runs: out1 may share its backing
	// array with chainingKey (MixKeyAndHash passes ck[:0]).
	tempKey := deriveTempKey(h, chainingKey, inputKeyMaterial)
	out1, out2 = hkdf(h, out1, out2, chainingKey, inputKeyMaterial)

	out3Mac := hmac.New(h, tempKey)
	out3Mac.Write(out2)
	out3Mac.Write([]byte{0x03})
	out3 = out3Mac.Sum(out3)

	return out1, out2, out3
}

func deriveTempKey(h func() hash.Hash, chainingKey, inputKeyMaterial []byte) []byte {
	mac := hmac.New(h, chainingKey)
	mac.Write(inputKeyMaterial)
	return mac.Sum(nil)
}
