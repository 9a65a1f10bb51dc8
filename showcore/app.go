package showcore

import (
	"github.com/aws/constructs-go/constructs/v10"
)

// Stacks holds every stack of the ShowCore application.
type Stacks struct {
	Network    *NetworkStack
	Security   *SecurityStack
	Monitoring *MonitoringStack
	Database   *DatabaseStack
	Cache      *CacheStack
	Storage    *StorageStack
	CDN        *CDNStack
	Backup     *BackupStack

	// SSMAccess is nil unless the configuration enables it.
	SSMAccess *SSMAccessStack
}

// BuildStacks creates the full ShowCore stack set on scope and wires the
// deployment order. Network comes first; Security, Database, and Cache hang
// off it; Monitoring and Storage stand alone; CDN follows Storage and Backup
// follows Monitoring. The SSM access stack is created only when enabled.
func BuildStacks(scope constructs.Construct, config StackConfig) *Stacks {
	stacks := &Stacks{}

	stacks.Network = NewNetworkStack(scope, "ShowCoreNetworkStack", config)

	stacks.Security = NewSecurityStack(scope, "ShowCoreSecurityStack", stacks.Network.VPC, config)
	stacks.Security.AddDependency(stacks.Network, nil)

	stacks.Monitoring = NewMonitoringStack(scope, "ShowCoreMonitoringStack", config)

	stacks.Database = NewDatabaseStack(scope, "ShowCoreDatabaseStack",
		stacks.Network.VPC, stacks.Security.RdsSecurityGroup, config)
	stacks.Database.AddDependency(stacks.Network, nil)
	stacks.Database.AddDependency(stacks.Security, nil)

	stacks.Cache = NewCacheStack(scope, "ShowCoreCacheStack",
		stacks.Network.VPC, stacks.Security.ElastiCacheSecurityGroup, config)
	stacks.Cache.AddDependency(stacks.Network, nil)
	stacks.Cache.AddDependency(stacks.Security, nil)

	stacks.Storage = NewStorageStack(scope, "ShowCoreStorageStack", config)

	stacks.CDN = NewCDNStack(scope, "ShowCoreCDNStack", stacks.Storage.StaticAssetsBucketName(), config)
	stacks.CDN.AddDependency(stacks.Storage, nil)

	stacks.Backup = NewBackupStack(scope, "ShowCoreBackupStack", stacks.Monitoring.CriticalAlertsTopic, config)
	stacks.Backup.AddDependency(stacks.Monitoring, nil)

	if config.EnableSSMAccess {
		stacks.SSMAccess = NewSSMAccessStack(scope, "ShowCoreSSMAccessStack",
			stacks.Network.VPC, stacks.Security.RdsSecurityGroup, stacks.Security.ElastiCacheSecurityGroup, config)
		stacks.SSMAccess.AddDependency(stacks.Network, nil)
		stacks.SSMAccess.AddDependency(stacks.Security, nil)
	}

	return stacks
}
