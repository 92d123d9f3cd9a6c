package stack

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/olusolaa/webstack/internal/errors"
)

// Inputs are the plan variables. vpc_id, ami_id and key_name have no
// default and must be supplied.
type Inputs struct {
	VPCID            string `mapstructure:"vpc_id" json:"vpc_id" validate:"required"`
	AMIID            string `mapstructure:"ami_id" json:"ami_id" validate:"required"`
	KeyName          string `mapstructure:"key_name" json:"key_name" validate:"required"`
	InstanceName     string `mapstructure:"instance_name" json:"instance_name" validate:"required"`
	InstanceType     string `mapstructure:"instance_type" json:"instance_type" validate:"required"`
	BucketName       string `mapstructure:"bucket_name" json:"bucket_name" validate:"required,min=3,max=63"`
	WebServerPackage string `mapstructure:"web_server_package" json:"web_server_package" validate:"required"`
	PackageManager   string `mapstructure:"package_manager" json:"package_manager" validate:"oneof=apt-get yum dnf"`
}

func DefaultInputs() Inputs {
	return Inputs{
		InstanceName:     "web-server",
		InstanceType:     "t2.micro",
		BucketName:       "my-static-website-bucket-webstack",
		WebServerPackage: "nginx",
		PackageManager:   "apt-get",
	}
}

// VariableNames lists the accepted variable names, sorted.
func VariableNames() []string {
	t := reflect.TypeOf(Inputs{})
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, t.Field(i).Tag.Get("mapstructure"))
	}
	sort.Strings(names)
	return names
}

// DecodeInputs layers values over the defaults. Unknown names are rejected
// and the result is validated.
func DecodeInputs(ctx context.Context, values map[string]any) (Inputs, error) {
	in := DefaultInputs()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &in,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Inputs{}, errors.Wrap(err, errors.CodeInternal, "failed to build input decoder")
	}
	if err := decoder.Decode(values); err != nil {
		return Inputs{}, errors.WrapUserFacing(err, errors.CodeInputValidation,
			fmt.Sprintf("invalid input variables: %v", err),
			fmt.Sprintf("Known variables: %s.", strings.Join(VariableNames(), ", ")))
	}
	if err := in.Validate(ctx); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func (in Inputs) Validate(ctx context.Context) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	err := validate.StructCtx(ctx, in)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.CodeInputValidation, "input validation failed")
	}
	var details strings.Builder
	details.WriteString("Input validation failed:")
	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			details.WriteString(fmt.Sprintf("\n - Variable '%s' is required", fe.Field()))
			continue
		}
		details.WriteString(fmt.Sprintf("\n - Variable '%s': Failed on '%s' validation (value: '%v')", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.NewUserFacing(errors.CodeInputValidation, details.String(),
		"Set variables with --var name=value, a --var-file, or the inputs section of the config file.")
}
