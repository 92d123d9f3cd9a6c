package domain

const (
	// Common Keys
	KeyName = "name"
	KeyARN  = "arn"
	KeyID   = "id"
	KeyTags = "tags" // map[string]string

	// UnknownValue stands in for attributes that only exist once a referenced
	// resource has been created.
	UnknownValue = "(known after apply)"

	// Security Group Keys
	SecurityGroupDescriptionKey = "description"
	SecurityGroupVPCIDKey       = "vpc_id"
	SecurityGroupIngressKey     = "ingress" // []string of canonical rules
	SecurityGroupEgressKey      = "egress"  // []string of canonical rules

	// Compute Instance Keys
	ComputeInstanceTypeKey   = "instance_type"
	ComputeImageIDKey        = "image_id"
	ComputeKeyNameKey        = "key_name"
	ComputeSecurityGroupsKey = "security_groups" // []string
	ComputeUserDataKey       = "user_data"

	// Storage Bucket Keys
	StorageBucketWebsiteIndexKey     = "website_index_document"
	StorageBucketWebsiteErrorKey     = "website_error_document"
	StorageBucketOwnershipKey        = "object_ownership"
	StorageBucketPublicAccessKey     = "public_access_block" // map[string]bool
	StorageBucketPolicyKey           = "policy"              // JSON policy string
	StorageBucketRegionKey           = "region"
	BucketObjectBucketKey            = "bucket"
	BucketObjectKeyKey               = "key"
	BucketObjectContentTypeKey       = "content_type"
	BucketObjectETagKey              = "etag"
	PublicAccessBlockPublicAcls      = "block_public_acls"
	PublicAccessBlockPublicPolicy    = "block_public_policy"
	PublicAccessIgnorePublicAcls     = "ignore_public_acls"
	PublicAccessRestrictPublicBucket = "restrict_public_buckets"

	// Distribution Keys
	DistributionOriginDomainKey       = "origin_domain_name"
	DistributionOriginIDKey           = "origin_id"
	DistributionEnabledKey            = "enabled"
	DistributionIPv6Key               = "ipv6_enabled"
	DistributionDefaultRootObjectKey  = "default_root_object"
	DistributionCommentKey            = "comment"
	DistributionAllowedMethodsKey     = "allowed_methods"
	DistributionCachedMethodsKey      = "cached_methods"
	DistributionViewerProtocolKey     = "viewer_protocol_policy"
	DistributionMinTTLKey             = "min_ttl"
	DistributionDefaultTTLKey         = "default_ttl"
	DistributionMaxTTLKey             = "max_ttl"
	DistributionForwardQueryStringKey = "forward_query_string"
	DistributionForwardCookiesKey     = "forward_cookies"
	DistributionGeoRestrictionKey     = "geo_restriction"
	DistributionDefaultCertificateKey = "cloudfront_default_certificate"
	DistributionPriceClassKey         = "price_class"
)

// Output attribute names exposed by live resources and usable in references.
const (
	OutputID                 = "id"
	OutputARN                = "arn"
	OutputPublicIP           = "public_ip"
	OutputPublicDNS          = "public_dns"
	OutputRegionalDomainName = "regional_domain_name"
	OutputWebsiteEndpoint    = "website_endpoint"
	OutputDomainName         = "domain_name"
	OutputETag               = "etag"
)

const (
	// AddressTagKey carries the plan address on every taggable object so it
	// can be found again without a state entry.
	AddressTagKey = "WebstackAddress"
	// TagPrefix marks a filter key as a tag lookup, e.g. "tag:Name".
	TagPrefix = "tag:"
)
