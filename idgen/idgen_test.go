package idgen

import (
	"testing"

	"github.com/sony/sonyflake"

	. "github.com/onsi/gomega"
)

func TestNextID(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should generate increasing distinct ids", func(t *testing.T) {
		// The default MachineID requires a private IPv4 address, which is not
		// available in all environments; use a fixed machine ID instead.
		worker := sonyflake.NewSonyflake(sonyflake.Settings{
			MachineID: func() (uint16, error) { return 1, nil },
		})

		last := NextID(worker)
		Expect(last).ToNot(BeZero())
		for i := 0; i < 10; i++ {
			next := NextID(worker)
			Expect(next > last).To(BeTrue())
			last = next
		}
	})
}
