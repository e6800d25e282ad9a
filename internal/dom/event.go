package dom

// Event types delivered by the document.
const (
	EventClick   = "click"
	EventChange  = "change"
	EventInput   = "input"
	EventKeyDown = "keydown"
	EventKeyUp   = "keyup"
	EventSubmit  = "submit"
)

// Event is a user interaction with an element.
type Event struct {
	Type   string
	Target *Element
	// Key is set for keyboard events and holds the key value, e.g. "a".
	Key string
}

// Listener receives events delivered to the document root.
type Listener func(ev *Event)

// Listen registers fn on the document root for the given event types. Every
// dispatched event of a matching type reaches fn regardless of which element
// it targets, so elements inserted later need no registration of their own.
func (d *Document) Listen(fn Listener, types ...string) {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	d.listeners = append(d.listeners, listener{types: set, fn: fn})
}

// Dispatch delivers ev to the root listeners in registration order.
func (d *Document) Dispatch(ev *Event) {
	for _, l := range d.listeners {
		if _, ok := l.types[ev.Type]; ok {
			l.fn(ev)
		}
	}
}

// Path returns the target followed by its ancestors up to the root element,
// the order in which an event bubbles.
func (ev *Event) Path() []*Element {
	var out []*Element
	for e := ev.Target; e != nil; e = e.Parent() {
		out = append(out, e)
	}
	return out
}
