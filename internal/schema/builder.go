package schema

import (
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Option configures schema building.
type Option func(*buildConfig)

type buildConfig struct {
	asyncField func(typeName, fieldName string) bool
}

// WithAsyncFields marks fields resolved asynchronously. The classifier is
// consulted per object/interface field; unmarked fields resolve synchronously
// from their source value.
func WithAsyncFields(classify func(typeName, fieldName string) bool) Option {
	return func(cfg *buildConfig) { cfg.asyncField = classify }
}

// BuildFromSDL parses and validates an SDL document and builds the executable
// schema from it.
func BuildFromSDL(sdl string, opts ...Option) (*Schema, error) {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	src, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return nil, err
	}

	s := &Schema{
		Types:      make(map[string]*Type),
		Directives: make(map[string]*Directive),
	}
	if src.Query != nil {
		s.QueryType = src.Query.Name
	}
	if src.Mutation != nil {
		s.MutationType = src.Mutation.Name
	}
	if src.Subscription != nil {
		s.SubscriptionType = src.Subscription.Name
	}

	s.Types["String"] = stringType
	s.Types["Int"] = intType
	s.Types["Float"] = floatType
	s.Types["Boolean"] = booleanType
	s.Types["ID"] = idType
	s.Directives["include"] = includeDirective
	s.Directives["skip"] = skipDirective

	for name, def := range src.Types {
		if def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		s.Types[name] = buildType(src, def, cfg)
	}
	for name, def := range src.Directives {
		if isBuiltinDirective(name) {
			continue
		}
		s.Directives[name] = buildDirective(def)
	}
	return s, nil
}

func isBuiltinDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "oneOf", "defer":
		return true
	}
	return false
}

func buildType(src *ast.Schema, def *ast.Definition, cfg *buildConfig) *Type {
	t := &Type{
		Name:        def.Name,
		Description: def.Description,
	}
	switch def.Kind {
	case ast.Scalar:
		t.Kind = TypeKindScalar
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}

	case ast.Object, ast.Interface:
		if def.Kind == ast.Object {
			t.Kind = TypeKindObject
		} else {
			t.Kind = TypeKindInterface
			for _, impl := range src.PossibleTypes[def.Name] {
				t.PossibleTypes = append(t.PossibleTypes, impl.Name)
			}
		}
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			t.Fields = append(t.Fields, buildField(def.Name, f, cfg))
		}

	case ast.Union:
		t.Kind = TypeKindUnion
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)

	case ast.Enum:
		t.Kind = TypeKindEnum
		for _, v := range def.EnumValues {
			ev := &EnumValue{Name: v.Name, Description: v.Description}
			ev.IsDeprecated, ev.DeprecationReason = deprecation(v.Directives)
			t.EnumValues = append(t.EnumValues, ev)
		}

	case ast.InputObject:
		t.Kind = TypeKindInputObject
		t.OneOf = def.Directives.ForName("oneOf") != nil
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, buildInputField(f))
		}
	}
	return t
}

func buildField(typeName string, def *ast.FieldDefinition, cfg *buildConfig) *Field {
	f := &Field{
		Name:        def.Name,
		Description: def.Description,
		Type:        buildTypeRef(def.Type),
	}
	if cfg.asyncField != nil {
		f.Async = cfg.asyncField(typeName, def.Name)
	}
	f.IsDeprecated, f.DeprecationReason = deprecation(def.Directives)
	for _, arg := range def.Arguments {
		f.Arguments = append(f.Arguments, buildArgument(arg))
	}
	return f
}

func buildArgument(def *ast.ArgumentDefinition) *InputValue {
	in := &InputValue{
		Name:        def.Name,
		Description: def.Description,
		Type:        buildTypeRef(def.Type),
	}
	if def.DefaultValue != nil {
		in.DefaultValue = valueToGo(def.DefaultValue)
	}
	in.IsDeprecated, in.DeprecationReason = deprecation(def.Directives)
	return in
}

func buildInputField(def *ast.FieldDefinition) *InputValue {
	in := &InputValue{
		Name:        def.Name,
		Description: def.Description,
		Type:        buildTypeRef(def.Type),
	}
	if def.DefaultValue != nil {
		in.DefaultValue = valueToGo(def.DefaultValue)
	}
	in.IsDeprecated, in.DeprecationReason = deprecation(def.Directives)
	return in
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := &Directive{
		Name:         def.Name,
		Description:  def.Description,
		IsRepeatable: def.IsRepeatable,
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		d.Arguments = append(d.Arguments, buildArgument(arg))
	}
	return d
}

func buildTypeRef(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return &TypeRef{Kind: TypeRefKindNonNull, OfType: buildTypeRef(&inner)}
	}
	if t.Elem != nil {
		return &TypeRef{Kind: TypeRefKindList, OfType: buildTypeRef(t.Elem)}
	}
	return &TypeRef{Kind: TypeRefKindNamed, Named: t.NamedType}
}

func deprecation(directives ast.DirectiveList) (bool, string) {
	d := directives.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	reason := "No longer supported"
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		reason = arg.Value.Raw
	}
	return true, reason
}

// valueToGo converts a constant AST value (default values have no variables)
// into its Go representation.
func valueToGo(v *ast.Value) any {
	if v == nil {
		return nil
	}
	val, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return val
}
