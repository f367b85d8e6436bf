package openai

import (
	"fmt"
	"strings"
)

func buildScriptSystem(ruleText string) string {
	sb := &strings.Builder{}
	sb.WriteString(strings.TrimSpace(ruleText))
	sb.WriteString("\n\nRespond strictly with a JSON object: {\"script\":string,\"caption\":string}.")
	return sb.String()
}

func buildScriptUser(in ScriptInput) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "สินค้า: %s\n", in.ProductName)
	fmt.Fprintf(sb, "รายละเอียด: %s\n", in.ProductDetails)
	fmt.Fprintf(sb, "สไตล์การรีวิว: %s\n", in.ReviewStyle)
	fmt.Fprintf(sb, "วัตถุประสงค์: %s\n", in.ReviewObjective)
	sb.WriteString("\nขอ 2 ส่วน:\n")
	sb.WriteString("1. script (บทพูดภาษาไทย) ความยาว 45-60 วินาที\n")
	sb.WriteString("2. caption (ภาษาไทย) สำหรับโพสต์ลง Social Media พร้อม Hashtags")
	return sb.String()
}

func buildVideoPromptSystem(ruleText string) string {
	sb := &strings.Builder{}
	sb.WriteString("You are an expert at creating video prompts for Sora AI video generation.\n")
	sb.WriteString("Your task is to create a detailed video prompt that describes the visual scene, motion, AND includes the Thai dialogue.\n")
	sb.WriteString("The video will be a UGC-style product review.\n")
	sb.WriteString("IMPORTANT: The final prompt MUST include the Thai script as the spoken dialogue.\n\n")
	sb.WriteString("GUIDELINES:\n")
	sb.WriteString(strings.TrimSpace(ruleText))
	return sb.String()
}

func buildVideoPromptUser(in PromptInput) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Product: %s\n", in.ProductName)
	fmt.Fprintf(sb, "Details: %s\n", in.ProductDetails)
	fmt.Fprintf(sb, "Style: %s\n", in.ReviewStyle)
	fmt.Fprintf(sb, "Script (Thai): %q\n", in.Script)
	sb.WriteString("\nCreate a definitive video generation prompt that includes the visual description and the spoken script.")
	return sb.String()
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	} else {
		return ""
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
