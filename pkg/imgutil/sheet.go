package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// NextPowerOfTwo は n 以上で最小の2のべき乗を返します。
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// SheetSize は frameW×frameH のフレームを n 枚敷き詰められる最小の
// 正方形（2のべき乗）の辺長を返します。
func SheetSize(frameW, frameH, n int) int {
	size := NextPowerOfTwo(max(frameW, frameH))
	for {
		cols := size / frameW
		rows := size / frameH
		if cols*rows >= n {
			return size
		}
		size *= 2
	}
}

// ComposeSheet はフレーム画像群を行優先で敷き詰めたスプライトシート PNG を
// 生成します。各フレームは frameW×frameH へ最近傍補間でリサイズされます
// （ピクセルアートのエッジ保持のため）。出力は入力に対して決定的です。
func ComposeSheet(frames [][]byte, frameW, frameH int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to compose")
	}
	if frameW <= 0 || frameH <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", frameW, frameH)
	}

	side := SheetSize(frameW, frameH, len(frames))
	cols := side / frameW

	sheet := image.NewRGBA(image.Rect(0, 0, side, side))
	for idx, data := range frames {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("frame %d decode failed: %w", idx, err)
		}
		x := (idx % cols) * frameW
		y := (idx / cols) * frameH
		dst := image.Rect(x, y, x+frameW, y+frameH)
		draw.NearestNeighbor.Scale(sheet, dst, img, img.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return nil, fmt.Errorf("sheet encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
