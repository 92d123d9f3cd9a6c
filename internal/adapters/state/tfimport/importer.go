// Package tfimport adopts a stack created by Terraform by turning the
// output of `terraform show -json` into state entries.
package tfimport

import (
	"context"
	"fmt"
	"os"
	"sort"

	tfjson "github.com/hashicorp/terraform-json"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
)

type typeMapping struct {
	kind domain.ResourceKind
	// outputs maps terraform attribute names to output names.
	outputs map[string]string
}

var supportedTypes = map[string]typeMapping{
	"aws_security_group": {
		kind:    domain.KindSecurityGroup,
		outputs: map[string]string{"id": domain.OutputID, "arn": domain.OutputARN},
	},
	"aws_instance": {
		kind: domain.KindComputeInstance,
		outputs: map[string]string{
			"id":         domain.OutputID,
			"arn":        domain.OutputARN,
			"public_ip":  domain.OutputPublicIP,
			"public_dns": domain.OutputPublicDNS,
		},
	},
	"aws_s3_bucket": {
		kind: domain.KindStorageBucket,
		outputs: map[string]string{
			"id":                          domain.OutputID,
			"arn":                         domain.OutputARN,
			"bucket_regional_domain_name": domain.OutputRegionalDomainName,
			"website_endpoint":            domain.OutputWebsiteEndpoint,
		},
	},
	"aws_s3_object": {
		kind:    domain.KindBucketObject,
		outputs: map[string]string{"etag": domain.OutputETag},
	},
	"aws_cloudfront_distribution": {
		kind: domain.KindDistribution,
		outputs: map[string]string{
			"id":          domain.OutputID,
			"arn":         domain.OutputARN,
			"domain_name": domain.OutputDomainName,
		},
	},
}

func mapTfType(tfType string) (typeMapping, bool) {
	m, ok := supportedTypes[tfType]
	return m, ok
}

// Importer matches terraform resources to the addresses of plan.
type Importer struct {
	plan   domain.Plan
	logger ports.Logger
}

func NewImporter(plan domain.Plan, logger ports.Logger) *Importer {
	return &Importer{plan: plan, logger: logger.WithFields(map[string]any{"component": "tfimport"})}
}

func (i *Importer) Import(ctx context.Context, path string) ([]domain.StateEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeImportError,
			fmt.Sprintf("failed to read %s", path),
			"Create the file with `terraform show -json > state.json`.")
	}

	var state tfjson.State
	if err := state.UnmarshalJSON(raw); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeImportError,
			fmt.Sprintf("%s is not terraform show -json output", path),
			"Create the file with `terraform show -json > state.json`.")
	}
	if state.Values == nil || state.Values.RootModule == nil {
		return nil, errors.NewUserFacing(errors.CodeImportError,
			fmt.Sprintf("%s contains no resources", path),
			"Run `terraform apply` first or check that the right workspace is selected.")
	}

	var resources []*tfjson.StateResource
	collectResources(state.Values.RootModule, &resources)

	entries := make([]domain.StateEntry, 0, len(resources))
	seen := make(map[string]string)
	for _, res := range resources {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeAborted, "import cancelled")
		}
		if res.Mode != tfjson.ManagedResourceMode {
			continue
		}
		mapping, ok := mapTfType(res.Type)
		if !ok {
			i.logger.Debugf(ctx, "Skipping unsupported terraform resource %s", res.Address)
			continue
		}

		entry, ok, err := i.toEntry(ctx, res, mapping)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if prev, dup := seen[entry.Address]; dup {
			return nil, errors.NewUserFacing(errors.CodeImportError,
				fmt.Sprintf("terraform resources %s and %s both match %s", prev, res.Address, entry.Address),
				"Remove the extra resource from the terraform state before importing.")
		}
		seen[entry.Address] = res.Address
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Stage != entries[b].Stage {
			return entries[a].Stage < entries[b].Stage
		}
		return entries[a].Address < entries[b].Address
	})
	i.logger.Infof(ctx, "Matched %d terraform resources", len(entries))
	return entries, nil
}

func collectResources(mod *tfjson.StateModule, out *[]*tfjson.StateResource) {
	if mod == nil {
		return
	}
	*out = append(*out, mod.Resources...)
	for _, child := range mod.ChildModules {
		collectResources(child, out)
	}
}

func (i *Importer) toEntry(ctx context.Context, res *tfjson.StateResource, mapping typeMapping) (domain.StateEntry, bool, error) {
	attrs := res.AttributeValues
	id := stringAttr(attrs, "id")

	var spec domain.ResourceSpec
	if mapping.kind == domain.KindBucketObject {
		bucket, key := stringAttr(attrs, "bucket"), stringAttr(attrs, "key")
		if bucket == "" || key == "" {
			return domain.StateEntry{}, false, errors.New(errors.CodeImportError,
				fmt.Sprintf("%s has no bucket or key attribute", res.Address))
		}
		id = domain.ObjectID(bucket, key)
		spec = i.objectSpec(key)
		if spec == nil {
			i.logger.Warnf(ctx, "Skipping %s: no file %q in the site directory", res.Address, key)
			return domain.StateEntry{}, false, nil
		}
	} else {
		var err error
		spec, err = i.singleton(mapping.kind, res.Address)
		if err != nil {
			return domain.StateEntry{}, false, err
		}
	}
	if id == "" {
		return domain.StateEntry{}, false, errors.New(errors.CodeImportError,
			fmt.Sprintf("%s has no id attribute", res.Address))
	}

	stage, _ := i.plan.StageOf(spec.Address())
	outputs := make(map[string]string, len(mapping.outputs))
	for attr, name := range mapping.outputs {
		if v := stringAttr(attrs, attr); v != "" {
			outputs[name] = v
		}
	}
	outputs[domain.OutputID] = id

	i.logger.Debugf(ctx, "Importing %s as %s (%s)", res.Address, spec.Address(), id)
	return domain.StateEntry{
		Address: spec.Address(),
		Kind:    mapping.kind,
		ID:      id,
		Stage:   stage,
		Outputs: outputs,
	}, true, nil
}

func (i *Importer) singleton(kind domain.ResourceKind, tfAddress string) (domain.ResourceSpec, error) {
	var found domain.ResourceSpec
	for _, r := range i.plan.Resources() {
		if r.Kind() != kind {
			continue
		}
		if found != nil {
			return nil, errors.New(errors.CodeImportError,
				fmt.Sprintf("plan has more than one %s, cannot match %s", kind, tfAddress))
		}
		found = r
	}
	if found == nil {
		return nil, errors.New(errors.CodeImportError,
			fmt.Sprintf("plan has no %s for %s", kind, tfAddress))
	}
	return found, nil
}

func (i *Importer) objectSpec(key string) domain.ResourceSpec {
	for _, r := range i.plan.Resources() {
		if obj, ok := r.(domain.ObjectSpec); ok && obj.Key == key {
			return obj
		}
	}
	return nil
}

func stringAttr(attrs map[string]any, name string) string {
	if attrs == nil {
		return ""
	}
	s, _ := attrs[name].(string)
	return s
}
