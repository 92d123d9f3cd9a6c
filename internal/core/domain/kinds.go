package domain

type ResourceKind string

const (
	KindSecurityGroup   ResourceKind = "SecurityGroup"
	KindComputeInstance ResourceKind = "ComputeInstance"
	KindStorageBucket   ResourceKind = "StorageBucket"
	KindBucketObject    ResourceKind = "BucketObject"
	KindDistribution    ResourceKind = "Distribution"
)

func (rk ResourceKind) String() string {
	return string(rk)
}

// AllKinds lists every kind in plan stage order.
func AllKinds() []ResourceKind {
	return []ResourceKind{
		KindSecurityGroup,
		KindStorageBucket,
		KindComputeInstance,
		KindBucketObject,
		KindDistribution,
	}
}
