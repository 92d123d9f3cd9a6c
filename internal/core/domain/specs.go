package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Tags is the tag set applied to a taggable resource.
type Tags map[string]string

func (t Tags) Copy() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// SecurityGroupRule is a single ingress or egress permission. Protocol "-1"
// means all protocols; ports are ignored in that case.
type SecurityGroupRule struct {
	Protocol    string   `json:"protocol"`
	FromPort    int32    `json:"from_port"`
	ToPort      int32    `json:"to_port"`
	CIDRBlocks  []string `json:"cidr_blocks"`
	Description string   `json:"description,omitempty"`
}

// Canonical renders one string per CIDR block so rule sets compare as sets
// regardless of how AWS groups permissions.
func (r SecurityGroupRule) Canonical() []string {
	proto := strings.ToLower(r.Protocol)
	from, to := r.FromPort, r.ToPort
	if proto == "-1" || proto == "all" {
		proto, from, to = "-1", 0, 0
	}
	out := make([]string, 0, len(r.CIDRBlocks))
	for _, cidr := range r.CIDRBlocks {
		out = append(out, fmt.Sprintf("%s:%d-%d:%s", proto, from, to, cidr))
	}
	return out
}

// ParseCanonicalRule is the inverse of Canonical for a single CIDR block.
func ParseCanonicalRule(s string) (SecurityGroupRule, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return SecurityGroupRule{}, fmt.Errorf("malformed rule %q", s)
	}
	var from, to int32
	if _, err := fmt.Sscanf(parts[1], "%d-%d", &from, &to); err != nil {
		return SecurityGroupRule{}, fmt.Errorf("malformed port range in rule %q: %w", s, err)
	}
	return SecurityGroupRule{
		Protocol:   parts[0],
		FromPort:   from,
		ToPort:     to,
		CIDRBlocks: []string{parts[2]},
	}, nil
}

func CanonicalRules(rules []SecurityGroupRule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Canonical()...)
	}
	sort.Strings(out)
	return out
}

type SecurityGroupSpec struct {
	ResourceAddress string              `json:"address"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	VPCID           string              `json:"vpc_id"`
	Ingress         []SecurityGroupRule `json:"ingress"`
	Egress          []SecurityGroupRule `json:"egress"`
	Tags            Tags                `json:"tags,omitempty"`
}

func (s SecurityGroupSpec) Address() string                  { return s.ResourceAddress }
func (s SecurityGroupSpec) Kind() ResourceKind               { return KindSecurityGroup }
func (s SecurityGroupSpec) References() []Ref                { return nil }
func (s SecurityGroupSpec) Bind(map[Ref]string) ResourceSpec { return s }

func (s SecurityGroupSpec) Attributes() map[string]any {
	return map[string]any{
		KeyName:                     s.Name,
		SecurityGroupDescriptionKey: s.Description,
		SecurityGroupVPCIDKey:       s.VPCID,
		SecurityGroupIngressKey:     CanonicalRules(s.Ingress),
		SecurityGroupEgressKey:      CanonicalRules(s.Egress),
		KeyTags:                     map[string]string(s.Tags.Copy()),
	}
}

type InstanceSpec struct {
	ResourceAddress  string `json:"address"`
	ImageID          string `json:"image_id"`
	InstanceType     string `json:"instance_type"`
	KeyName          string `json:"key_name"`
	SecurityGroupRef Ref    `json:"security_group_ref"`
	// SecurityGroupID is empty until the reference is bound.
	SecurityGroupID string `json:"security_group_id,omitempty"`
	UserData        string `json:"user_data"`
	Tags            Tags   `json:"tags,omitempty"`
}

func (s InstanceSpec) Address() string    { return s.ResourceAddress }
func (s InstanceSpec) Kind() ResourceKind { return KindComputeInstance }

func (s InstanceSpec) References() []Ref {
	if s.SecurityGroupRef.IsZero() {
		return nil
	}
	return []Ref{s.SecurityGroupRef}
}

func (s InstanceSpec) Bind(values map[Ref]string) ResourceSpec {
	if v, ok := values[s.SecurityGroupRef]; ok && !s.SecurityGroupRef.IsZero() {
		s.SecurityGroupID = v
	}
	s.Tags = s.Tags.Copy()
	return s
}

func (s InstanceSpec) Attributes() map[string]any {
	sg := s.SecurityGroupID
	if sg == "" && !s.SecurityGroupRef.IsZero() {
		sg = UnknownValue
	}
	groups := []string{}
	if sg != "" {
		groups = []string{sg}
	}
	return map[string]any{
		ComputeImageIDKey:        s.ImageID,
		ComputeInstanceTypeKey:   s.InstanceType,
		ComputeKeyNameKey:        s.KeyName,
		ComputeSecurityGroupsKey: groups,
		ComputeUserDataKey:       s.UserData,
		KeyTags:                  map[string]string(s.Tags.Copy()),
	}
}

type WebsiteConfig struct {
	IndexDocument string `json:"index_document"`
	ErrorDocument string `json:"error_document"`
}

type PublicAccessBlock struct {
	BlockPublicAcls       bool `json:"block_public_acls"`
	BlockPublicPolicy     bool `json:"block_public_policy"`
	IgnorePublicAcls      bool `json:"ignore_public_acls"`
	RestrictPublicBuckets bool `json:"restrict_public_buckets"`
}

func (p PublicAccessBlock) AsMap() map[string]bool {
	return map[string]bool{
		PublicAccessBlockPublicAcls:      p.BlockPublicAcls,
		PublicAccessBlockPublicPolicy:    p.BlockPublicPolicy,
		PublicAccessIgnorePublicAcls:     p.IgnorePublicAcls,
		PublicAccessRestrictPublicBucket: p.RestrictPublicBuckets,
	}
}

type BucketSpec struct {
	ResourceAddress   string            `json:"address"`
	Name              string            `json:"name"`
	Region            string            `json:"region"`
	Website           WebsiteConfig     `json:"website"`
	ObjectOwnership   string            `json:"object_ownership"`
	PublicAccessBlock PublicAccessBlock `json:"public_access_block"`
	Policy            PolicyDocument    `json:"policy"`
	Tags              Tags              `json:"tags,omitempty"`
}

func (s BucketSpec) Address() string                  { return s.ResourceAddress }
func (s BucketSpec) Kind() ResourceKind               { return KindStorageBucket }
func (s BucketSpec) References() []Ref                { return nil }
func (s BucketSpec) Bind(map[Ref]string) ResourceSpec { return s }

func (s BucketSpec) Attributes() map[string]any {
	policy, _ := s.Policy.JSON()
	return map[string]any{
		KeyName:                      s.Name,
		StorageBucketRegionKey:       s.Region,
		StorageBucketWebsiteIndexKey: s.Website.IndexDocument,
		StorageBucketWebsiteErrorKey: s.Website.ErrorDocument,
		StorageBucketOwnershipKey:    s.ObjectOwnership,
		StorageBucketPublicAccessKey: s.PublicAccessBlock.AsMap(),
		StorageBucketPolicyKey:       policy,
		KeyTags:                      map[string]string(s.Tags.Copy()),
	}
}

type ObjectSpec struct {
	ResourceAddress string `json:"address"`
	Bucket          string `json:"bucket"`
	Key             string `json:"key"`
	Source          string `json:"source"`
	ContentType     string `json:"content_type"`
	ETag            string `json:"etag"`
	Size            int64  `json:"size"`
}

func (s ObjectSpec) Address() string                  { return s.ResourceAddress }
func (s ObjectSpec) Kind() ResourceKind               { return KindBucketObject }
func (s ObjectSpec) References() []Ref                { return nil }
func (s ObjectSpec) Bind(map[Ref]string) ResourceSpec { return s }

func (s ObjectSpec) Attributes() map[string]any {
	return map[string]any{
		BucketObjectBucketKey:      s.Bucket,
		BucketObjectKeyKey:         s.Key,
		BucketObjectContentTypeKey: s.ContentType,
		BucketObjectETagKey:        s.ETag,
	}
}

// ObjectID is the provider id of a bucket object.
func ObjectID(bucket, key string) string {
	return bucket + "/" + key
}

// SplitObjectID is the inverse of ObjectID.
func SplitObjectID(id string) (bucket, key string, ok bool) {
	bucket, key, ok = strings.Cut(id, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

type CacheBehavior struct {
	AllowedMethods       []string `json:"allowed_methods"`
	CachedMethods        []string `json:"cached_methods"`
	ViewerProtocolPolicy string   `json:"viewer_protocol_policy"`
	MinTTL               int64    `json:"min_ttl"`
	DefaultTTL           int64    `json:"default_ttl"`
	MaxTTL               int64    `json:"max_ttl"`
	ForwardQueryString   bool     `json:"forward_query_string"`
	ForwardCookies       string   `json:"forward_cookies"`
}

type DistributionSpec struct {
	ResourceAddress    string        `json:"address"`
	OriginRef          Ref           `json:"origin_ref"`
	OriginDomainName   string        `json:"origin_domain_name,omitempty"`
	OriginID           string        `json:"origin_id"`
	Enabled            bool          `json:"enabled"`
	IPv6Enabled        bool          `json:"ipv6_enabled"`
	DefaultRootObject  string        `json:"default_root_object"`
	Comment            string        `json:"comment"`
	PriceClass         string        `json:"price_class"`
	CacheBehavior      CacheBehavior `json:"default_cache_behavior"`
	GeoRestriction     string        `json:"geo_restriction"`
	DefaultCertificate bool          `json:"cloudfront_default_certificate"`
	Tags               Tags          `json:"tags,omitempty"`
}

func (s DistributionSpec) Address() string    { return s.ResourceAddress }
func (s DistributionSpec) Kind() ResourceKind { return KindDistribution }

func (s DistributionSpec) References() []Ref {
	if s.OriginRef.IsZero() {
		return nil
	}
	return []Ref{s.OriginRef}
}

func (s DistributionSpec) Bind(values map[Ref]string) ResourceSpec {
	if v, ok := values[s.OriginRef]; ok && !s.OriginRef.IsZero() {
		s.OriginDomainName = v
	}
	s.Tags = s.Tags.Copy()
	return s
}

func (s DistributionSpec) Attributes() map[string]any {
	origin := s.OriginDomainName
	if origin == "" && !s.OriginRef.IsZero() {
		origin = UnknownValue
	}
	return map[string]any{
		DistributionOriginDomainKey:       origin,
		DistributionOriginIDKey:           s.OriginID,
		DistributionEnabledKey:            s.Enabled,
		DistributionIPv6Key:               s.IPv6Enabled,
		DistributionDefaultRootObjectKey:  s.DefaultRootObject,
		DistributionCommentKey:            s.Comment,
		DistributionPriceClassKey:         s.PriceClass,
		DistributionAllowedMethodsKey:     append([]string(nil), s.CacheBehavior.AllowedMethods...),
		DistributionCachedMethodsKey:      append([]string(nil), s.CacheBehavior.CachedMethods...),
		DistributionViewerProtocolKey:     s.CacheBehavior.ViewerProtocolPolicy,
		DistributionMinTTLKey:             s.CacheBehavior.MinTTL,
		DistributionDefaultTTLKey:         s.CacheBehavior.DefaultTTL,
		DistributionMaxTTLKey:             s.CacheBehavior.MaxTTL,
		DistributionForwardQueryStringKey: s.CacheBehavior.ForwardQueryString,
		DistributionForwardCookiesKey:     s.CacheBehavior.ForwardCookies,
		DistributionGeoRestrictionKey:     s.GeoRestriction,
		DistributionDefaultCertificateKey: s.DefaultCertificate,
		KeyTags:                           map[string]string(s.Tags.Copy()),
	}
}
