package iterate

import (
	"bufio"
	"strings"
)

// Proposal is one parsed model response: what to commit, what to change, and
// what to run. Absent sections leave their fields empty.
type Proposal struct {
	CommitMessage string
	Diff          string
	Commands      []string
}

// Empty reports whether the proposal contains no change and no commands.
// The commit message alone does not count as activity.
func (p Proposal) Empty() bool {
	return p.Diff == "" && len(p.Commands) == 0
}

type parseState int

const (
	scanPreamble parseState = iota
	scanCommitMessage
	scanDiff
	scanCommands
)

// markerLine checks whether line begins with marker and returns the text
// trailing the marker on the same line.
func markerLine(line, marker string) (rest string, ok bool) {
	if !strings.HasPrefix(line, marker) {
		return "", false
	}
	return strings.TrimSpace(line[len(marker):]), true
}

// ParseResponse extracts a Proposal from raw model output.
//
// The grammar has three markers in fixed order: COMMIT_MESSAGE:, DIFF:,
// COMMANDS:. A line scanner accumulates lines into the active section and
// switches on each marker. The commit message is kept only once the DIFF:
// marker closes it, and the diff only once COMMANDS: closes it; a section
// left open at end of input yields an empty field, matching the rule that
// each field is the text strictly between its marker and the next one.
//
// ParseResponse never fails: malformed or partial input degrades to empty
// fields, which the controller reads as "no change proposed".
func ParseResponse(text string) Proposal {
	var commitLines, diffLines []string
	var commands []string
	commitClosed := false
	diffClosed := false
	state := scanPreamble

	scanner := bufio.NewScanner(strings.NewReader(text))
	// Diff lines can be arbitrarily long; raise the scanner's line cap.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if state < scanCommitMessage {
			if rest, ok := markerLine(line, MarkerCommitMessage); ok {
				state = scanCommitMessage
				if rest != "" {
					commitLines = append(commitLines, rest)
				}
				continue
			}
		}
		if state < scanDiff {
			if rest, ok := markerLine(line, MarkerDiff); ok {
				commitClosed = state == scanCommitMessage
				state = scanDiff
				if rest != "" {
					diffLines = append(diffLines, rest)
				}
				continue
			}
		}
		if state < scanCommands {
			if _, ok := markerLine(line, MarkerCommands); ok {
				diffClosed = state == scanDiff
				state = scanCommands
				continue
			}
		}

		switch state {
		case scanCommitMessage:
			commitLines = append(commitLines, line)
		case scanDiff:
			diffLines = append(diffLines, line)
		case scanCommands:
			if cmd := strings.TrimSpace(line); cmd != "" {
				commands = append(commands, cmd)
			}
		}
	}

	var p Proposal
	if commitClosed {
		p.CommitMessage = strings.TrimSpace(strings.Join(commitLines, "\n"))
	}
	if diffClosed {
		p.Diff = strings.TrimSpace(strings.Join(diffLines, "\n"))
	}
	p.Commands = commands
	return p
}

// FormatProposal renders a Proposal back into the response grammar. It is the
// inverse of ParseResponse for proposals whose fields do not themselves
// contain marker lines.
func FormatProposal(p Proposal) string {
	var sb strings.Builder
	sb.WriteString(MarkerCommitMessage)
	sb.WriteString("\n")
	if p.CommitMessage != "" {
		sb.WriteString(p.CommitMessage)
		sb.WriteString("\n")
	}
	sb.WriteString(MarkerDiff)
	sb.WriteString("\n")
	if p.Diff != "" {
		sb.WriteString(p.Diff)
		sb.WriteString("\n")
	}
	sb.WriteString(MarkerCommands)
	sb.WriteString("\n")
	for _, cmd := range p.Commands {
		sb.WriteString(cmd)
		sb.WriteString("\n")
	}
	return sb.String()
}
