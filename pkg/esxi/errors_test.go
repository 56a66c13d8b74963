package esxi

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vmware/govmomi/vim25/types"
)

func TestAPIError(t *testing.T) {
	cause := errors.New("fault")

	err := apiError("list_pkgs", "esx1", cause)
	assert.EqualError(t, err, "list_pkgs on esx1: fault")
	assert.ErrorIs(t, err, ErrAPI)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = apiError("get_lun_ids", "", cause)
	assert.EqualError(t, err, "get_lun_ids: fault")

	wrapped := fmt.Errorf("outer: %w", apiError("inner", "esx1", cause))
	assert.Same(t, wrapped, apiError("outer", "esx2", wrapped))

	assert.NoError(t, apiError("noop", "esx1", nil))
}

func TestAPIError_Kind(t *testing.T) {
	err := &APIError{Op: "get", Kind: ErrNotFound, Err: errors.New("gone")}
	assert.ErrorIs(t, err, ErrAPI)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
}

func TestInvalidArgument(t *testing.T) {
	err := invalidArgument("level %q", "bogus")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.EqualError(t, err, `invalid argument: level "bogus"`)
}

func TestPackageOf(t *testing.T) {
	created := time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)
	p := packageOf(types.SoftwarePackage{
		Name:                    "esx-ui",
		Version:                 "2.13.0",
		Vendor:                  "VMware",
		AcceptanceLevel:         "vmware_signed",
		MaintenanceModeRequired: types.NewBool(false),
		CreationDate:            &created,
	})
	assert.Equal(t, "2.13.0", p.Version)
	assert.False(t, p.MaintenanceModeRequired)
	assert.Equal(t, &created, p.CreationDate)
}

func TestTimeValue(t *testing.T) {
	now := time.Now()

	assert.Nil(t, timeValue(nil))
	assert.Nil(t, timeValue(time.Time{}))
	assert.Nil(t, timeValue((*time.Time)(nil)))
	assert.Equal(t, &now, timeValue(now))
	assert.Equal(t, &now, timeValue(&now))
}
