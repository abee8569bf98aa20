package parser

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

var reJSONBlock = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")

// SplitStructuredBlock separates a generated plan response into its
// markdown body and the optional trailing ```json structure hint. A
// malformed hint block is dropped with a warning; the markdown is returned
// either way.
func SplitStructuredBlock(response string) (string, *StructureHint) {
	loc := reJSONBlock.FindStringSubmatchIndex(response)
	if loc == nil {
		return strings.TrimSpace(response), nil
	}

	payload := response[loc[2]:loc[3]]
	markdown := strings.TrimSpace(response[:loc[0]])

	var hint StructureHint
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &hint); err != nil {
		log.Printf("WARN: parser: failed to decode plan structure block: %v", err)
		return markdown, nil
	}
	return markdown, &hint
}
