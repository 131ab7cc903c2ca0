package event

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestUpdatedPropertiesColumn(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should serialize to a json column value", func(t *testing.T) {
		props := UpdatedProperties{{PropertyName: "Status", PropertyDesc: "Status",
			OldValue: "DRAFT", OldValueDesc: "DRAFT", NewValue: "READY_FOR_ENGINEERING", NewValueDesc: "READY_FOR_ENGINEERING"}}

		value, err := props.Value()
		assert.Nil(t, err)
		Expect(value).To(MatchJSON(`[{"propertyName":"Status", "propertyDesc":"Status",
			"oldValue":"DRAFT", "oldValueDesc":"DRAFT",
			"newValue":"READY_FOR_ENGINEERING", "newValueDesc":"READY_FOR_ENGINEERING"}]`))
	})

	t.Run("should scan from both string and bytes", func(t *testing.T) {
		raw := `[{"propertyName":"Name","propertyDesc":"Name","oldValue":"a","oldValueDesc":"a","newValue":"b","newValueDesc":"b"}]`
		want := UpdatedProperties{{PropertyName: "Name", PropertyDesc: "Name",
			OldValue: "a", OldValueDesc: "a", NewValue: "b", NewValueDesc: "b"}}

		props := UpdatedProperties{}
		assert.Nil(t, props.Scan(raw))
		Expect(props).To(Equal(want))

		props = UpdatedProperties{}
		assert.Nil(t, props.Scan([]byte(raw)))
		Expect(props).To(Equal(want))
	})

	t.Run("should reject other column types", func(t *testing.T) {
		props := UpdatedProperties{}
		Expect(props.Scan(123)).ToNot(BeNil())
	})
}
