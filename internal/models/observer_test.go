package models_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/compmath/internal/models"
)

var _ = Describe("Bus", func() {
	var bus *models.Bus

	BeforeEach(func() {
		bus = &models.Bus{}
	})

	It("delivers events in registration order", func() {
		var order []string
		bus.AddObserver(&models.ObserverFuncs{OnChanged: func() { order = append(order, "first") }})
		bus.AddObserver(&models.ObserverFuncs{OnChanged: func() { order = append(order, "second") }})

		bus.NotifyObservers()
		Expect(order).To(Equal([]string{"first", "second"}))
	})

	It("routes each event kind to its method", func() {
		rec := &recorder{}
		bus.AddObserver(rec)

		bus.NotifyObservers()
		bus.ValidationError("bad eps")
		bus.WasCalculated()

		Expect(rec.events).To(Equal([]string{"changed", "invalid: bad eps", "calculated"}))
	})

	It("stops delivering after removal", func() {
		rec := &recorder{}
		bus.AddObserver(rec)
		bus.RemoveObserver(rec)

		bus.NotifyObservers()
		Expect(rec.events).To(BeEmpty())
		Expect(bus.Observers()).To(Equal(0))
	})

	It("queues events raised during a broadcast", func() {
		rec := &recorder{}
		raised := false
		trigger := &models.ObserverFuncs{
			OnCalculated: func() {
				if !raised {
					raised = true
					bus.NotifyObservers()
				}
			},
		}
		bus.AddObserver(trigger)
		bus.AddObserver(rec)

		bus.WasCalculated()

		// The nested ModelChanged arrives only after every observer saw
		// Calculated.
		Expect(rec.events).To(Equal([]string{"calculated", "changed"}))
	})

	It("keeps nested events in the order they were raised", func() {
		rec := &recorder{}
		depth := 0
		bus.AddObserver(&models.ObserverFuncs{
			OnChanged: func() {
				if depth == 0 {
					depth++
					bus.ValidationError("one")
					bus.WasCalculated()
				}
			},
		})
		bus.AddObserver(rec)

		bus.NotifyObservers()
		Expect(rec.events).To(Equal([]string{"changed", "invalid: one", "calculated"}))

		rec.reset()
		bus.NotifyObservers()
		Expect(rec.events).To(Equal([]string{"changed"}))
	})
})
