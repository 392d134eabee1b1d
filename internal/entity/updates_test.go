package entity

import (
	"testing"

	"dqdash/internal/entity/common"
)

func TestUserUpdatesToMap(t *testing.T) {
	active := false
	admin := true

	tests := []struct {
		name    string
		updates UserUpdates
		want    map[string]interface{}
	}{
		{name: "empty", updates: UserUpdates{}, want: map[string]interface{}{}},
		{
			name:    "set name",
			updates: UserUpdates{FullName: common.Some("Ann")},
			want:    map[string]interface{}{"full_name": "Ann"},
		},
		{
			name:    "clear name",
			updates: UserUpdates{FullName: common.Null[string]()},
			want:    map[string]interface{}{"full_name": nil},
		},
		{
			name:    "flags",
			updates: UserUpdates{IsActive: &active, IsAdmin: &admin},
			want:    map[string]interface{}{"is_active": false, "is_admin": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.updates.ToMap()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Fatalf("key %s: expected %v, got %v", k, v, got[k])
				}
			}
			if tt.updates.IsEmpty() != (len(tt.want) == 0) {
				t.Fatalf("unexpected IsEmpty for %v", got)
			}
		})
	}
}
