package detail

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// logGroupTag names an explicit log group on the alarm resource itself,
// for namespaces where no dimension-based derivation exists.
const logGroupTag = "prx:ops:cloudwatch-log-group-name"

// tagNamespaces is the allow-list of namespaces that fall back to the
// log-group resource tag.
var tagNamespaces = map[string]struct{}{
	"AWS/ECS":            {},
	"AWS/ApplicationELB": {},
	"AWS/SQS":            {},
}

func dimensionValue(dimensions []types.Dimension, name string) string {
	for _, d := range dimensions {
		if aws.ToString(d.Name) == name {
			return aws.ToString(d.Value)
		}
	}
	return ""
}

// ResolveLogGroup derives the log group related to an alarm's metric, or
// returns "" when none can be resolved. Absence is not an error.
func ResolveLogGroup(namespace string, dimensions []types.Dimension, tags map[string]string) string {
	switch namespace {
	case "AWS/Lambda":
		if fn := dimensionValue(dimensions, "FunctionName"); fn != "" {
			return "/aws/lambda/" + fn
		}
	case "AWS/States":
		if arn := dimensionValue(dimensions, "LambdaFunctionArn"); arn != "" {
			if fn := functionNameFromARN(arn); fn != "" {
				return "/aws/lambda/" + fn
			}
		}
	default:
		if _, ok := tagNamespaces[namespace]; ok {
			return tags[logGroupTag]
		}
	}
	return ""
}

// functionNameFromARN extracts the function name segment of a Lambda ARN,
// dropping any qualifier suffix.
func functionNameFromARN(arn string) string {
	const marker = ":function:"
	i := strings.Index(arn, marker)
	if i < 0 {
		return ""
	}
	name := arn[i+len(marker):]
	name, _, _ = strings.Cut(name, ":")
	return name
}
