package esxi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

func vmfs(disks ...string) mo.Datastore {
	var extents []types.HostScsiDiskPartition
	for _, d := range disks {
		extents = append(extents, types.HostScsiDiskPartition{DiskName: d, Partition: 1})
	}
	return mo.Datastore{Info: &types.VmfsDatastoreInfo{Vmfs: &types.HostVmfsVolume{Extent: extents}}}
}

func TestVmfsDiskNames(t *testing.T) {
	datastores := []mo.Datastore{
		vmfs("naa.600a0980383140", "naa.600a0980383141"),
		vmfs("naa.600a0980383140"),
		{Info: &types.NasDatastoreInfo{}},
		{Info: &types.VmfsDatastoreInfo{}},
		vmfs(""),
		vmfs("mpx.vmhba0:C0:T0:L0"),
	}

	assert.Equal(t, []string{
		"mpx.vmhba0:C0:T0:L0",
		"naa.600a0980383140",
		"naa.600a0980383141",
	}, vmfsDiskNames(datastores))
}

func TestVmfsDiskNames_Empty(t *testing.T) {
	assert.Equal(t, []string{}, vmfsDiskNames(nil))
}
