package classifiers

// encodedText holds one tokenized example as ONNX-ready int64 slices
type encodedText struct {
	ids     []int64
	typeIDs []int64
	mask    []int64
}

func (e encodedText) len() int {
	return len(e.ids)
}

// truncateEncoding cuts the sequence to maxLen tokens. The final token
// ([SEP]) is always kept, so a truncated sequence still ends the way the
// model saw it during training.
func truncateEncoding(enc encodedText, maxLen int) encodedText {
	n := enc.len()
	if n <= maxLen || maxLen < 2 {
		return enc
	}

	cut := func(s []int64) []int64 {
		if len(s) != n {
			return s
		}
		out := make([]int64, 0, maxLen)
		out = append(out, s[:maxLen-1]...)
		return append(out, s[n-1])
	}

	return encodedText{
		ids:     cut(enc.ids),
		typeIDs: cut(enc.typeIDs),
		mask:    cut(enc.mask),
	}
}

// padInto copies src into dst and zero-fills the remainder
func padInto(dst, src []int64) {
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, src)
}

// toInt64 widens tokenizer output for ONNX
func toInt64(values []uint32) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

// ones returns an attention mask that attends to every token
func ones(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
