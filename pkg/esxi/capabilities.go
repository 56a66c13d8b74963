package esxi

import (
	"context"
	"reflect"
	"strings"

	"github.com/Bibi40k/vmware-esxi-manager/internal/utils"
	"github.com/vmware/govmomi/vim25/types"
)

// HostCapabilityNames lists the HostCapability properties reported by GetCapabilities,
// in their vSphere (camelCase) spelling.
var HostCapabilityNames = []string{
	"accel3dSupported",
	"backgroundSnapshotsSupported",
	"cloneFromSnapshotSupported",
	"cpuHwMmuSupported",
	"cpuMemoryResourceConfigurationSupported",
	"cryptoSupported",
	"datastorePrincipalSupported",
	"deltaDiskBackingsSupported",
	"eightPlusHostVmfsSharedAccessSupported",
	"encryptedVMotionSupported",
	"encryptionCBRCSupported",
	"encryptionChangeOnAddRemoveSupported",
	"encryptionFaultToleranceSupported",
	"encryptionHBRSupported",
	"encryptionHotOperationSupported",
	"encryptionMemorySaveSupported",
	"encryptionRDMSupported",
	"encryptionVFlashSupported",
	"encryptionWithSnapshotsSupported",
	"featureCapabilitiesSupported",
	"firewallIpRulesSupported",
	"ftCompatibilityIssues",
	"ftSupported",
	"gatewayOnNicSupported",
	"hbrNicSelectionSupported",
	"highGuestMemSupported",
	"hostAccessManagerSupported",
	"interVMCommunicationThroughVMCISupported",
	"ipmiSupported",
	"iscsiSupported",
	"latencySensitivitySupported",
	"localSwapDatastoreSupported",
	"loginBySSLThumbprintSupported",
	"maintenanceModeSupported",
	"markAsLocalSupported",
	"markAsSsdSupported",
	"maxHostRunningVms",
	"maxHostSupportedVcpus",
	"maxNumDisksSVMotion",
	"maxRegisteredVMs",
	"maxRunningVMs",
	"maxSupportedVMs",
	"maxSupportedVcpus",
	"maxVcpusPerFtVm",
	"messageBusProxySupported",
	"multipleNetworkStackInstanceSupported",
	"nestedHVSupported",
	"nfs41Krb5iSupported",
	"nfs41Supported",
	"nfsSupported",
	"nicTeamingSupported",
	"oneKVolumeAPIsSupported",
	"perVMNetworkTrafficShapingSupported",
	"perVmSwapFiles",
	"preAssignedPCIUnitNumbersSupported",
	"provisioningNicSelectionSupported",
	"rebootSupported",
	"recordReplaySupported",
	"recursiveResourcePoolsSupported",
	"reliableMemoryAware",
	"replayCompatibilityIssues",
	"replayUnsupportedReason",
	"restrictedSnapshotRelocateSupported",
	"sanSupported",
	"scaledScreenshotSupported",
	"scheduledHardwareUpgradeSupported",
	"screenshotSupported",
	"servicePackageInfoSupported",
	"shutdownSupported",
	"smartCardAuthenticationSupported",
	"smpFtCompatibilityIssues",
	"smpFtSupported",
	"snapshotRelayoutSupported",
	"standbySupported",
	"storageIORMSupported",
	"storagePolicySupported",
	"storageVMotionSupported",
	"supportedVmfsMajorVersion",
	"suspendedRelocateSupported",
	"tpmSupported",
	"turnDiskLocatorLedSupported",
	"unsharedSwapVMotionSupported",
	"upitSupported",
	"vFlashSupported",
	"vPMCSupported",
	"vStorageCapable",
	"virtualExecUsageSupported",
	"virtualVolumeDatastoreSupported",
	"vlanTaggingSupported",
	"vmDirectPathGen2Supported",
	"vmDirectPathGen2UnsupportedReason",
	"vmDirectPathGen2UnsupportedReasonExtended",
	"vmfsDatastoreMountCapable",
	"vmotionAcrossNetworkSupported",
	"vmotionSupported",
	"vmotionWithStorageVMotionSupported",
	"vrNfcNicSelectionSupported",
	"vsanSupported",
}

// Capabilities maps the snake_case form of each HostCapabilityNames entry to its value.
// Values are bool, int64, string, []any or nil when the host does not report the property.
type Capabilities map[string]any

// GetCapabilities returns the capability flags of every host in scope.
func (m *Manager) GetCapabilities(ctx context.Context, scope Scope) (_ map[string]Capabilities, err error) {
	defer m.track("get_capabilities")(&err)

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}
	props, err := hostProperties(ctx, hosts, "capability")
	if err != nil {
		return nil, apiError("get_capabilities", "", err)
	}

	ret := make(map[string]Capabilities, len(props))
	for _, h := range props {
		ret[h.Name] = capabilitiesOf(h.Capability)
	}
	return ret, nil
}

// capabilitiesOf flattens a HostCapability into Capabilities. A nil capability yields nil values.
func capabilitiesOf(c *types.HostCapability) Capabilities {
	fields := map[string]reflect.Value{}
	if c != nil {
		v := reflect.ValueOf(c).Elem()
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				continue
			}
			name, _, _ := strings.Cut(f.Tag.Get("xml"), ",")
			if name == "" {
				continue
			}
			fields[name] = v.Field(i)
		}
	}

	caps := make(Capabilities, len(HostCapabilityNames))
	for _, name := range HostCapabilityNames {
		var value any
		if fv, ok := fields[name]; ok {
			value = plainValue(fv)
		}
		caps[utils.CamelToSnakeCase(name)] = value
	}
	return caps
}

// plainValue converts a vSphere data object field into a plain Go value.
func plainValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return plainValue(v.Elem())
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			out = append(out, plainValue(v.Index(i)))
		}
		return out
	}
	return v.Interface()
}
