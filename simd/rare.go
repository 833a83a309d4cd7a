package simd

// commonBytes lists bytes from most to least frequent in typical text and
// source code. Bytes that are not listed rank below all of them.
const commonBytes = " etaoinsrhldcu\n.,mfpgwyb_()=\";/-vk0T1SAEICx2:R'N>OLDPMF*<{}j3#q5z948!67&[]|\\$%+?@`~^\tBGHJKQUVWXYZ"

// Ranks for bytes missing from commonBytes. UTF-8 lead and continuation
// bytes are frequent in non-English text; control bytes are rare everywhere.
const (
	rankHighByte = 20
	rankOther    = 0
)

var byteRanks = func() [256]byte {
	var ranks [256]byte
	for b := 0x80; b < 0x100; b++ {
		ranks[b] = rankHighByte
	}
	for i := 0; i < len(commonBytes); i++ {
		ranks[commonBytes[i]] = byte(255 - 2*i)
	}
	return ranks
}()

// ByteRank returns how common b is; lower ranks are rarer and make better
// search anchors.
func ByteRank(b byte) byte {
	return byteRanks[b]
}

// RareByteInfo is the pair of needle bytes Memmem scans for.
type RareByteInfo struct {
	Byte1  byte // rarest byte of the needle
	Index1 int
	Byte2  byte // next rarest, distinct from Byte1 when the needle allows
	Index2 int
}

// SelectRareBytes picks the two rarest bytes of needle by ByteRank. Ties go
// to the earlier position. A one-byte needle reports the same byte twice.
func SelectRareBytes(needle []byte) RareByteInfo {
	switch len(needle) {
	case 0:
		return RareByteInfo{}
	case 1:
		return RareByteInfo{Byte1: needle[0], Byte2: needle[0]}
	}

	r := RareByteInfo{Byte1: needle[0], Index1: 0, Byte2: needle[1], Index2: 1}
	if ByteRank(r.Byte2) < ByteRank(r.Byte1) {
		r.Byte1, r.Index1, r.Byte2, r.Index2 = r.Byte2, r.Index2, r.Byte1, r.Index1
	}
	for i := 2; i < len(needle); i++ {
		b := needle[i]
		switch rank := ByteRank(b); {
		case rank < ByteRank(r.Byte1):
			r.Byte2, r.Index2 = r.Byte1, r.Index1
			r.Byte1, r.Index1 = b, i
		case b != r.Byte1 && rank < ByteRank(r.Byte2):
			r.Byte2, r.Index2 = b, i
		}
	}
	return r
}
