package models

// Observer receives model events. Methods are called synchronously on the
// goroutine that changed the model, in registration order.
type Observer interface {
	ModelChanged()
	ValidationError(msg string)
	Calculated()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are
// skipped. Register it by pointer so RemoveObserver can find it again.
type ObserverFuncs struct {
	OnChanged         func()
	OnValidationError func(msg string)
	OnCalculated      func()
}

func (o *ObserverFuncs) ModelChanged() {
	if o.OnChanged != nil {
		o.OnChanged()
	}
}

func (o *ObserverFuncs) ValidationError(msg string) {
	if o.OnValidationError != nil {
		o.OnValidationError(msg)
	}
}

func (o *ObserverFuncs) Calculated() {
	if o.OnCalculated != nil {
		o.OnCalculated()
	}
}

type eventKind int

const (
	eventChanged eventKind = iota
	eventValidation
	eventCalculated
)

type event struct {
	kind eventKind
	msg  string
}

// Bus broadcasts model events to registered observers.
//
// An event raised by an observer while a broadcast is running is queued
// and delivered after the current broadcast finishes, on the same
// goroutine. Events are never dropped or reordered. A Bus is not safe for
// concurrent use.
type Bus struct {
	observers   []Observer
	queue       []event
	dispatching bool
}

func (b *Bus) AddObserver(o Observer) {
	b.observers = append(b.observers, o)
}

// RemoveObserver unregisters the first registration of o. Removing during
// a broadcast takes effect from the next event.
func (b *Bus) RemoveObserver(o Observer) {
	for i, obs := range b.observers {
		if obs == o {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *Bus) Observers() int { return len(b.observers) }

func (b *Bus) NotifyObservers() { b.emit(event{kind: eventChanged}) }

func (b *Bus) ValidationError(msg string) { b.emit(event{kind: eventValidation, msg: msg}) }

func (b *Bus) WasCalculated() { b.emit(event{kind: eventCalculated}) }

func (b *Bus) emit(e event) {
	b.queue = append(b.queue, e)
	if b.dispatching {
		return
	}

	b.dispatching = true
	defer func() {
		b.dispatching = false
		b.queue = b.queue[:0]
	}()

	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]

		observers := append([]Observer(nil), b.observers...)
		for _, o := range observers {
			switch next.kind {
			case eventChanged:
				o.ModelChanged()
			case eventValidation:
				o.ValidationError(next.msg)
			case eventCalculated:
				o.Calculated()
			}
		}
	}
}
