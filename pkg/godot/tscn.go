package godot

import (
	"fmt"
	"strings"
)

// serializeScene は AnimatedSprite2D ノード1つからなるシーン（.tscn）の
// テキストを生成します。SpriteFrames リソースを ext_resource として参照します。
func serializeScene(assetName string, uids *assigned, tresFile string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[gd_scene load_steps=2 format=3 uid=\"%s\"]\n\n", uids.scene)
	fmt.Fprintf(&b, "[ext_resource type=\"SpriteFrames\" uid=\"%s\" path=\"%s\" id=\"%s\"]\n\n",
		uids.resource, tresFile, uids.sceneExt)
	fmt.Fprintf(&b, "[node name=\"%s\" type=\"AnimatedSprite2D\"]\n", nodeName(assetName))
	fmt.Fprintf(&b, "sprite_frames = ExtResource(\"%s\")\n", uids.sceneExt)
	fmt.Fprintf(&b, "animation = &\"%s\"\n", DefaultAnimationName)

	return b.String()
}

// nodeName はアセット名を Godot のノード名として安全な形へ整形します。
// ノード名に使えない区切り文字はアンダースコアに置換します。
func nodeName(name string) string {
	if name == "" {
		return "Sprite"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ':', '@', '/', '"', '%':
			return '_'
		}
		return r
	}, name)
}
