// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package subject implements the observable capability shared by buffers and
// textures.
//
// A Subject broadcasts state-change Messages to the Observers bound to it.
// Each Observer is bound through a Binding that carries the observer's own
// slot index, so one observer can watch several subjects and tell them apart.
//
// Subjects never own their observers. An observer that goes away must unbind
// first; the subject holds only the association.
package subject

import "fmt"

// Message identifies the kind of state change a Subject reports.
type Message uint8

const (
	// SubjectChanged reports a metadata change such as usage, size or a new
	// realized image.
	SubjectChanged Message = iota

	// SubjectMapped reports that a buffer mapping began.
	SubjectMapped

	// SubjectUnmapped reports that a buffer mapping ended.
	SubjectUnmapped

	// BindingChanged reports a change in how the subject is bound, such as
	// an indexed transform feedback binding.
	BindingChanged

	// InternalMemoryAllocationChanged reports that the realized native
	// storage was replaced.
	InternalMemoryAllocationChanged

	// InitializationComplete reports that robust resource initialization
	// finished for the subject.
	InitializationComplete
)

// String returns the message name.
func (m Message) String() string {
	switch m {
	case SubjectChanged:
		return "SubjectChanged"
	case SubjectMapped:
		return "SubjectMapped"
	case SubjectUnmapped:
		return "SubjectUnmapped"
	case BindingChanged:
		return "BindingChanged"
	case InternalMemoryAllocationChanged:
		return "InternalMemoryAllocationChanged"
	case InitializationComplete:
		return "InitializationComplete"
	default:
		return fmt.Sprintf("Message(%d)", uint8(m))
	}
}

// Index is the slot an observer assigned to one of its bindings.
type Index uint32

// Observer receives state-change messages.
type Observer interface {
	OnSubjectStateChange(index Index, msg Message)
}

type entry struct {
	observer Observer
	index    Index
}

// Subject is embedded by resources that report state changes.
// The zero value has no observers.
type Subject struct {
	observers []entry
}

// AddObserver registers observer under index. Registering the same pair
// twice is a no-op.
func (s *Subject) AddObserver(observer Observer, index Index) {
	for _, e := range s.observers {
		if e.observer == observer && e.index == index {
			return
		}
	}
	s.observers = append(s.observers, entry{observer, index})
}

// RemoveObserver removes the first registration of (observer, index).
func (s *Subject) RemoveObserver(observer Observer, index Index) {
	for i, e := range s.observers {
		if e.observer == observer && e.index == index {
			last := len(s.observers) - 1
			s.observers[i] = s.observers[last]
			s.observers[last] = entry{}
			s.observers = s.observers[:last]
			return
		}
	}
}

// HasObservers reports whether any observer is registered.
func (s *Subject) HasObservers() bool { return len(s.observers) > 0 }

// ObserverCount returns the number of registrations.
func (s *Subject) ObserverCount() int { return len(s.observers) }

// OnStateChange delivers msg to every observer.
func (s *Subject) OnStateChange(msg Message) {
	for _, e := range s.observers {
		e.observer.OnSubjectStateChange(e.index, msg)
	}
}

// ResetObservers drops every registration.
func (s *Subject) ResetObservers() {
	clear(s.observers)
	s.observers = s.observers[:0]
}

// Binding ties an observer's slot to at most one subject at a time.
type Binding struct {
	observer Observer
	index    Index
	subject  *Subject
}

// NewBinding returns an unbound binding for observer at index.
func NewBinding(observer Observer, index Index) Binding {
	return Binding{observer: observer, index: index}
}

// Bind moves the binding to s. A nil s unbinds.
func (b *Binding) Bind(s *Subject) {
	if b.subject == s {
		return
	}
	if b.subject != nil {
		b.subject.RemoveObserver(b.observer, b.index)
	}
	b.subject = s
	if s != nil {
		s.AddObserver(b.observer, b.index)
	}
}

// Reset unbinds without notifying.
func (b *Binding) Reset() { b.Bind(nil) }

// Subject returns the bound subject, or nil.
func (b *Binding) Subject() *Subject { return b.subject }

// Index returns the binding's slot.
func (b *Binding) Index() Index { return b.index }
