// Package walk provides tools for traversing all the parts of a message.
package walk

import "github.com/zostay/go-mdmail/message"

// Processor is a callback that can be passed to the AndProcess() function
// to do any kind of generic processing of a message and its sub-parts.
//
// The Processor is given a part to examine and the ancestry of the part. If
// len(parents) is zero, then this is the top-level part (i.e., the part
// that AndProcess() was called upon, which might not be the root message).
//
// The Processor may return an error to cause AndProcess() to terminate
// immediately and return that error.
type Processor func(part message.Part, parents []message.Part) error

// AndProcess will walk the parts tree of a message (or a part of a message)
// in depth-first order and call the given Processor function for each part
// found, the part itself included. It will terminate once all parts have
// been processed and return nil. If the Processor function returns an
// error, it will terminate early and return that error.
func AndProcess(
	processor Processor,
	msg message.Part,
) error {
	parents := make([]message.Part, 0, 10)
	return andProcess(processor, msg, parents)
}

func andProcess(
	processor Processor,
	part message.Part,
	parents []message.Part,
) error {
	if err := processor(part, parents); err != nil {
		return err
	}

	if part.IsMultipart() {
		parents = append(parents, part)
		for _, subPart := range part.GetParts() {
			if err := andProcess(processor, subPart, parents); err != nil {
				return err
			}
		}
	}

	return nil
}
