package utils

// DereferenceSeed は、int64のポインタを安全にデリファレンスします。
// ポインタがnilの場合は0を返します。
func DereferenceSeed(seed *int64) int64 {
	if seed == nil {
		return 0
	}
	return *seed
}

// SeedToPtrInt32 は domain の *int64 を Gemini SDK 用の *int32 に安全に変換します。
// 値が int32 の範囲を超える場合は上位ビットが切り捨てられますが、これは
// シード値の再現性において期待される挙動です。
func SeedToPtrInt32(seed *int64) *int32 {
	if seed == nil {
		return nil
	}
	v := int32(*seed)
	return &v
}
