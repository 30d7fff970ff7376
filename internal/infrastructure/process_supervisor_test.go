package infrastructure

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLinesOrCarriageReturns(t *testing.T) {
	input := "[download]  10.0%\r[download]  20.0%\rdone\nlast"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(scanLinesOrCarriageReturns)

	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}

	assert.Equal(t, []string{"[download]  10.0%", "[download]  20.0%", "done", "last"}, tokens)
}

func TestScanLinesOrCarriageReturns_OversizedLine(t *testing.T) {
	input := strings.Repeat("a", 2*maxLineSize+10) + "\n[download] 100.0%\n"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLinesOrCarriageReturns)

	var lengths []int
	var last string
	for scanner.Scan() {
		lengths = append(lengths, len(scanner.Text()))
		last = scanner.Text()
	}

	require.NoError(t, scanner.Err())
	assert.Equal(t, []int{maxLineSize, maxLineSize, 10, len("[download] 100.0%")}, lengths)
	assert.Equal(t, "[download] 100.0%", last)
}

func TestLineTail(t *testing.T) {
	tail := newLineTail(2)
	tail.add("one")
	tail.add("two")
	tail.add("three")

	assert.Equal(t, "two\nthree", tail.String())
}
