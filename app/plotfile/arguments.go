package plotfile

import "strings"

// collectArguments reads one annotation per non-blank line until the data
// sentinel.
func collectArguments(lr *lineReader) ([]string, error) {
	var args []string
	for {
		line, ok := lr.next()
		if !ok {
			return args, lr.err()
		}
		if isBlank(line) {
			continue
		}
		if strings.Contains(line, dataSentinel) {
			return args, nil
		}
		args = append(args, line)
	}
}
