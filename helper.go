package logging

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

// maxChainDepth bounds the walk over cyclic or pathological cause chains.
const maxChainDepth = 50

// errorChain is the cause chain of a logging failure, outermost first. ops holds the
// Station-Manager operation of each link, or "" for plain errors.
type errorChain struct {
	messages []string
	ops      []string
}

// walkErrorChain follows DetailedError.Cause() where available and errors.Unwrap
// otherwise. A repeated plain message ends the walk.
func walkErrorChain(err error) errorChain {
	var c errorChain
	seen := map[string]bool{}
	for depth := 0; err != nil && depth < maxChainDepth; depth++ {
		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			c.append(dErr.Error(), string(dErr.Op()))
			err = dErr.Cause()
			continue
		}
		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		c.append(msg, emptyString)
		err = stderrs.Unwrap(err)
	}
	return c
}

func (c *errorChain) append(msg, op string) {
	c.messages = append(c.messages, msg)
	c.ops = append(c.ops, op)
}

// root is the innermost message.
func (c errorChain) root() string {
	if len(c.messages) == 0 {
		return emptyString
	}
	return c.messages[len(c.messages)-1]
}

// rootOp is the innermost operation, "" when the root is a plain error.
func (c errorChain) rootOp() string {
	if len(c.ops) == 0 {
		return emptyString
	}
	return c.ops[len(c.ops)-1]
}

// namedOps lists the known operations, outermost first.
func (c errorChain) namedOps() []string {
	out := make([]string, 0, len(c.ops))
	for _, op := range c.ops {
		if op != emptyString {
			out = append(out, op)
		}
	}
	return out
}

// String joins the messages with " -> ".
func (c errorChain) String() string {
	return strings.Join(c.messages, " -> ")
}
