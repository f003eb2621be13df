package logging

import (
	"fmt"
	"strings"
	"testing"

	smerrors "github.com/Station-Manager/errors"
	"github.com/stretchr/testify/assert"
)

func TestWalkErrorChain_WithDetailedAndStd(t *testing.T) {
	inner := smerrors.New("logging.RotatingFileSink.open").Msg("open /var/log/pkg.log: read-only file system")
	middle := smerrors.New("logging.RotatingFileSink.emit").Err(inner).Msg("failed to reopen log file")
	outer := smerrors.New("logging.Service.setup").Err(middle).Msg("failed to set up pkg stream")

	chain := walkErrorChain(outer)
	assert.Equal(t, []string{
		"failed to set up pkg stream",
		"failed to reopen log file",
		"open /var/log/pkg.log: read-only file system",
	}, chain.messages)
	assert.Equal(t, []string{
		"logging.Service.setup",
		"logging.RotatingFileSink.emit",
		"logging.RotatingFileSink.open",
	}, chain.namedOps())
	assert.Equal(t, "open /var/log/pkg.log: read-only file system", chain.root())
	assert.Equal(t, "logging.RotatingFileSink.open", chain.rootOp())

	wrapped := smerrors.New("wrap.Std").Errorf("wrap: %w", outer)
	chain2 := walkErrorChain(wrapped)
	assert.True(t, strings.HasPrefix(chain2.messages[0], "wrap:"))
	assert.Equal(t, chain.root(), chain2.root())
}

func TestWalkErrorChain_PlainErrors(t *testing.T) {
	base := fmt.Errorf("no space left on device")
	err := fmt.Errorf("write pkg.log: %w", base)

	chain := walkErrorChain(err)
	assert.Equal(t, []string{"write pkg.log: no space left on device", "no space left on device"}, chain.messages)
	assert.Equal(t, []string{"", ""}, chain.ops)
	assert.Empty(t, chain.namedOps())
	assert.Equal(t, "no space left on device", chain.root())
	assert.Empty(t, chain.rootOp())
	assert.Equal(t, "write pkg.log: no space left on device -> no space left on device", chain.String())
}

func TestWalkErrorChain_Nil(t *testing.T) {
	chain := walkErrorChain(nil)
	assert.Empty(t, chain.messages)
	assert.Empty(t, chain.root())
	assert.Empty(t, chain.rootOp())
	assert.Empty(t, chain.String())
}
