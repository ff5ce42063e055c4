package model

import (
	"strings"

	"github.com/fionafan/callout/internal/model/contract"
)

const (
	reasoningMaxCompletionTokens = 16000
	standardMaxTokens            = 4096
	standardTemperature          = float32(0.1)
)

// IsReasoningModel reports whether a model id belongs to the reasoning
// family. Those endpoints reject sampling parameters and cap output with
// max_completion_tokens instead of max_tokens.
func IsReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "gpt-5")
}

// BuildToolRequest shapes the request for a working iteration, tool
// catalog attached.
func BuildToolRequest(model string, messages []contract.Message, tools []contract.ToolDef) contract.CompletionRequest {
	req := contract.CompletionRequest{
		Model:    model,
		Messages: messages,
		Tools:    tools,
	}

	if IsReasoningModel(model) {
		req.MaxCompletionTokens = reasoningMaxCompletionTokens
		return req
	}

	temp := standardTemperature
	req.ToolChoice = "auto"
	req.MaxTokens = standardMaxTokens
	req.Temperature = &temp
	return req
}

// BuildFinalRequest shapes the tool-free request that forces a closing
// answer after the budget runs out. Every model family gets the same
// shape here.
func BuildFinalRequest(model string, messages []contract.Message) contract.CompletionRequest {
	temp := standardTemperature
	return contract.CompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   standardMaxTokens,
		Temperature: &temp,
	}
}
