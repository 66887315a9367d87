package executor

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	schema "github.com/hanpama/queryflow/internal/schema"
)

// collectedFieldMap preserves field order from the original query.
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*ast.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseName string, field *ast.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		return
	}
	cfm.index[responseName] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseName: responseName,
		Fields:       []*ast.Field{field},
	})
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields groups the selection set's fields by response name,
// expanding fragments and honoring @skip/@include.
func collectFields(op *operation, objectType *schema.Type, selectionSet ast.SelectionSet) *collectedFieldMap {
	grouped := newCollectedFieldMap()
	collectFieldsImpl(op, objectType, selectionSet, grouped, make(map[string]bool))
	return grouped
}

func collectFieldsImpl(op *operation, objectType *schema.Type, selectionSet ast.SelectionSet, grouped *collectedFieldMap, visitedFragments map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *ast.Field:
			if !shouldIncludeNode(op, sel.Directives) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			grouped.add(responseName, sel)

		case *ast.InlineFragment:
			if !shouldIncludeNode(op, sel.Directives) {
				continue
			}
			if sel.TypeCondition != "" && sel.TypeCondition != objectType.Name {
				continue
			}
			collectFieldsImpl(op, objectType, sel.SelectionSet, grouped, visitedFragments)

		case *ast.FragmentSpread:
			if !shouldIncludeNode(op, sel.Directives) {
				continue
			}
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := op.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				continue
			}
			if fragmentDef.TypeCondition != "" && fragmentDef.TypeCondition != objectType.Name {
				continue
			}
			if !shouldIncludeNode(op, fragmentDef.Directives) {
				continue
			}
			collectFieldsImpl(op, objectType, fragmentDef.SelectionSet, grouped, visitedFragments)
		}
	}
}

// shouldIncludeNode evaluates @skip and @include.
func shouldIncludeNode(op *operation, directives ast.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, err := directiveArgumentValue(op, skip, "if"); err == nil {
			if b, ok := v.(bool); ok && b {
				return false
			}
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, err := directiveArgumentValue(op, include, "if"); err == nil {
			if b, ok := v.(bool); ok && !b {
				return false
			}
		}
	}
	return true
}

func directiveArgumentValue(op *operation, directive *ast.Directive, argName string) (any, error) {
	for _, arg := range directive.Arguments {
		if arg.Name == argName {
			return valueFromASTWithVars(arg.Value, op.variableValues), nil
		}
	}
	return nil, fmt.Errorf("argument %s not found", argName)
}

func getFieldDefinition(objectType *schema.Type, fieldName string) *schema.Field {
	for _, field := range objectType.Fields {
		if field.Name == fieldName {
			return field
		}
	}
	return nil
}
