package iterate

import (
	"encoding/json"
	"fmt"
)

// Section markers of the response grammar the model must follow.
const (
	MarkerCommitMessage = "COMMIT_MESSAGE:"
	MarkerDiff          = "DIFF:"
	MarkerCommands      = "COMMANDS:"
)

const systemPromptText = "You are an AI developer agent tasked with improving a software project.\n" +
	"When provided with the current project files and command outputs from previous iterations, analyze the entire project and propose improvements.\n" +
	"Respond strictly using the following format:\n" +
	"COMMIT_MESSAGE:\n<commit message text>\n" +
	"DIFF:\n<unified git diff patch>\n" +
	"COMMANDS:\n<command1>\n<command2>\n" +
	"If no changes are needed, leave the diff and commands sections empty.\n"

// ComposePrompt turns a snapshot into the system and user prompts for one
// model call. The user prompt embeds the entire file set as an indented JSON
// object; Go's map marshaling sorts keys, so the serialization is
// deterministic for a given tree.
//
// The whole tree is sent every round rather than incremental diffs. That
// costs tokens but keeps the model's view identical to the real working tree
// with no state carried between calls.
func ComposePrompt(files FileSet) (systemPrompt, userPrompt string, err error) {
	encoded, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("compose prompt: %w", err)
	}

	userPrompt = "Here is the current project as a JSON object mapping file paths to their contents.\n" +
		"This includes all code files, text files, and command output logs from previous iterations.\n" +
		string(encoded) +
		"\nReview this project and the command outputs. Then suggest and apply improvements.\n" +
		"Return your answer in the specified format."

	return systemPromptText, userPrompt, nil
}
