// Package prompt はスプライト生成用プロンプトの組み立てを提供します。
// テンプレート本文は生成品質に直結するため、文言は実績のあるものを維持し、
// みだりに変更しません。
package prompt

import (
	"fmt"
	"strings"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
)

// gameAssetContext は全プロンプト共通の前置き文です。2Dゲームアセットの
// 視覚表現に焦点を当てるようモデルを誘導します。
const gameAssetContext = `You are an AI assistant specialized in helping game developers conceptualize video games and generate ideas for sprites and 2D game assets. Your responses should be concise and focused on visual descriptions, mood, style, and elements relevant to 2D game art creation. Emphasize sprite design, pixel art, and other aspects unique to 2D games.`

// BaseSprite はスプライトのベース画像（最初のフレーム）生成用プロンプトを組み立てます。
func BaseSprite(theme domain.ThemeDescriptor, spriteDescription string) string {
	var b strings.Builder
	b.WriteString(gameAssetContext)
	b.WriteString("\n")
	if theme.StylePrompt != "" {
		fmt.Fprintf(&b, "\nProject Description:\n%s\n", theme.StylePrompt)
	}
	if theme.Keywords != "" {
		fmt.Fprintf(&b, "\nKeywords: %s\n", theme.Keywords)
	}
	fmt.Fprintf(&b, "\nBased on the style of the provided context, generate a detailed base sprite image of '%s' on a plain white background.\n", spriteDescription)
	b.WriteString(cameraLine(theme.Camera))
	return b.String()
}

// NextFrame は直前のフレームに続くアニメーションフレーム生成用プロンプトを組み立てます。
// 参照画像として直前フレームを添付する前提の文面です。
func NextFrame(theme domain.ThemeDescriptor, animationName string) string {
	var b strings.Builder
	b.WriteString(gameAssetContext)
	b.WriteString("\n")
	fmt.Fprintf(&b, "\nAnimation: %s\n", animationName)
	b.WriteString("\nBased on the provided sprite image, generate the next sprite image for the animation sequence. Ensure continuity in visual style, movement, and thematic elements, including the plain white background.\n")
	b.WriteString(cameraLine(theme.Camera))
	return b.String()
}

// BetweenFrames は2枚のフレームの中間姿勢を補間するフレーム生成用プロンプトを組み立てます。
func BetweenFrames(theme domain.ThemeDescriptor, animationName string) string {
	var b strings.Builder
	b.WriteString(gameAssetContext)
	b.WriteString("\n")
	fmt.Fprintf(&b, "\nGiven the two provided sprite images showing different frames of a %s animation generate a new intermediate frame that represents the midway pose between them.\n", animationName)
	b.WriteString("Blend the characters motion smoothly, adjust the body orientation appropriately, and preserve the consistent 2D pixel art style, character proportions, and details such as the plain white background.\n")
	b.WriteString("The goal is to create a visually correct \"in-between\" frame that fits naturally between these two sprites in an animation sequence.\n")
	b.WriteString(cameraLine(theme.Camera))
	return b.String()
}

// ReferenceImage はプロジェクトの世界観を表す参照画像生成用プロンプトを組み立てます。
func ReferenceImage(theme domain.ThemeDescriptor) string {
	var b strings.Builder
	b.WriteString(gameAssetContext)
	b.WriteString("\n")
	b.WriteString("\nUsing the provided context about a video game concept, generate a new reference or style image. The generated image should align with the established style, themes, mood, and visual universe, yet capture a new conceptual perspective.\n")
	if theme.StylePrompt != "" {
		fmt.Fprintf(&b, "\nProject Description:\n%s\n", theme.StylePrompt)
	}
	if theme.Keywords != "" {
		fmt.Fprintf(&b, "\nKeywords: %s\n", theme.Keywords)
	}
	b.WriteString(cameraLine(theme.Camera))
	return b.String()
}

// AnimationSuggestion は既存アニメーションと重複しない追加アニメーション名の
// 提案を求めるプロンプトを組み立てます。
func AnimationSuggestion(theme domain.ThemeDescriptor, spriteDescription string, current []string) string {
	var b strings.Builder
	b.WriteString(gameAssetContext)
	b.WriteString("\n")
	if theme.StylePrompt != "" {
		fmt.Fprintf(&b, "\nProject Description:\n%s\n", theme.StylePrompt)
	}
	if theme.Keywords != "" {
		fmt.Fprintf(&b, "\nKeywords: %s\n", theme.Keywords)
	}
	fmt.Fprintf(&b, "\nGiven the sprite description: '%s', and current animation names: [%s].\n", spriteDescription, strings.Join(current, ", "))
	b.WriteString("\nSuggest an additional animation name that makes sense for this sprite and does not overlap any of its current animations.\n")
	b.WriteString("Provide the output as a single animation name with no other text. Make any spaces underscores.\n")
	return b.String()
}

// ProjectDescription はプロジェクト説明文の生成用プロンプトを組み立てます。
// keywords が空の場合はモデルに自由な発想を促します。
func ProjectDescription(keywords string) string {
	guidance := "Generate a description for an interesting video game concept (e.g., fantasy RPG, sci-fi exploration, cute puzzle game)."
	if strings.TrimSpace(keywords) != "" {
		guidance = fmt.Sprintf("Base the description on the following keywords: '%s'.", keywords)
	}
	var b strings.Builder
	b.WriteString(gameAssetContext)
	b.WriteString("\n")
	b.WriteString("\nGenerate a compelling but short maximum 3 sentence description for a video game concept.\n")
	b.WriteString(guidance)
	b.WriteString("\n")
	b.WriteString("\nThe description should be detailed enough to inspire visual ideas for the game assets such as sprite animations, pixel art characters, 2D environments, props, and effects.\n")
	return b.String()
}

// Keywords はプロジェクト説明文からのキーワード抽出用プロンプトを組み立てます。
func Keywords(projectDescription string) string {
	var b strings.Builder
	b.WriteString(gameAssetContext)
	b.WriteString("\n")
	b.WriteString("\nAnalyze the following video game description and extract a list of the most relevant keywords (around 5-10).\n")
	fmt.Fprintf(&b, "\nVideo Game Description:\n\"%s\"\n", projectDescription)
	b.WriteString("\nIdentify keywords covering the core themes, genre, art style, key visual elements (including sprite design, pixel art details, 2D backgrounds, and overall mood), and setting.\n")
	b.WriteString("These keywords should be concise and useful for searching, tagging, or generating sprites and other 2D game assets.\n")
	b.WriteString("Provide the output as a comma separated list of keywords with no other text.\n")
	return b.String()
}

// cameraLine はカメラ視点の指定行を返します。未指定や "none" は空扱いです。
func cameraLine(camera string) string {
	c := strings.ToLower(strings.TrimSpace(camera))
	if c == "" || c == "none" || c == "null" {
		return ""
	}
	return fmt.Sprintf("\nCamera Perspective/Viewing Angle: %s\n", camera)
}
