package godot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultAnimationName はエクスポートされるアニメーションの名前です。
// Godot の AnimatedSprite2D が既定で参照する名前に合わせます。
const DefaultAnimationName = "default"

// animationSpeed はアニメーションの再生速度（FPS）です。1.0 に固定することで
// フレームの duration 値がそのまま秒として解釈されます。
const animationSpeed = 1.0

// serializeFrames は SpriteFrames リソース（.tres）のテキストを生成します。
// Godot 4 のテキストリソース文法に従い、load_steps は
// ext_resource 数 + sub_resource 数 + 1 です。
func serializeFrames(res *collected, uids *assigned, sheetFile string) string {
	var b strings.Builder

	loadSteps := 1 + len(res.frames) + 1
	fmt.Fprintf(&b, "[gd_resource type=\"SpriteFrames\" load_steps=%d format=3 uid=\"%s\"]\n\n", loadSteps, uids.resource)
	fmt.Fprintf(&b, "[ext_resource type=\"Texture2D\" uid=\"%s\" path=\"%s\" id=\"1\"]\n\n", uids.texture, sheetFile)

	// フレームごとの AtlasTexture。領域は行優先でシート上に割り当てる。
	cols := res.sheetSide / res.frameW
	for i := range res.frames {
		x := (i % cols) * res.frameW
		y := (i / cols) * res.frameH
		fmt.Fprintf(&b, "[sub_resource type=\"AtlasTexture\" id=\"%s\"]\n", uids.frames[i])
		fmt.Fprintf(&b, "atlas = ExtResource(\"1\")\n")
		fmt.Fprintf(&b, "region = Rect2(%d, %d, %d, %d)\n\n", x, y, res.frameW, res.frameH)
	}

	b.WriteString("[resource]\n")
	b.WriteString("animations = [\n")
	b.WriteString("  {\n")
	b.WriteString("    \"frames\": [\n")
	for i, f := range res.frames {
		b.WriteString("      {\n")
		fmt.Fprintf(&b, "        \"duration\": %s,\n", godotFloat(durationUnits(f.duration)))
		fmt.Fprintf(&b, "        \"texture\": SubResource(\"%s\")\n", uids.frames[i])
		b.WriteString("      },\n")
	}
	b.WriteString("    ],\n")
	b.WriteString("    \"loop\": true,\n")
	fmt.Fprintf(&b, "    \"name\": &\"%s\",\n", DefaultAnimationName)
	fmt.Fprintf(&b, "    \"speed\": %s\n", godotFloat(animationSpeed))
	b.WriteString("  },\n")
	b.WriteString("]\n")

	return b.String()
}

// durationUnits は表示時間をエンジンの時間単位へ変換します。
// speed=1.0 のもとでは「1フレーム = 1秒」なので値は秒そのものです。
func durationUnits(d time.Duration) float64 {
	return d.Seconds()
}

// godotFloat は浮動小数点数を Godot のテキスト表記で整形します。
// 整数値でも必ず小数点を含めます（1 → "1.0"）。
func godotFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
