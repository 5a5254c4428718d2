package interpreter

import (
	"fmt"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
	"github.com/FoundationINCCorporateTeam/RIFT/pkg/runtime"
)

func (i *Interpreter) evaluateClassDefinition(def *ast.ClassDefinition, env *runtime.Environment) (runtime.Value, error) {
	name := def.ID.Name
	if binding, ok := env.Lookup(name); ok && env.HasLocal(name) {
		if existing, isClass := binding.Value.(*runtime.ClassValue); isClass && existing.Instantiated() {
			return nil, i.errorAt(def, runtime.TypeError, "class %s already has instances and cannot be redefined", name)
		}
	}
	var parent *runtime.ClassValue
	if def.Parent != nil {
		val, err := env.Get(def.Parent.Name)
		if err != nil {
			return nil, i.errorAt(def.Parent, runtime.NameError, "unknown parent class '%s'", def.Parent.Name)
		}
		cls, ok := val.(*runtime.ClassValue)
		if !ok {
			return nil, i.errorAt(def.Parent, runtime.TypeError, "%s extends %s, which is a %s, not a class", name, def.Parent.Name, runtime.TypeName(val))
		}
		parent = cls
	}

	cls := runtime.NewClass(name, parent, env)
	// bind first so methods and static initializers can refer to the class
	env.DefineConst(name, cls)

	for _, member := range def.Members {
		memberName := member.Name.Name
		switch member.Kind {
		case ast.ClassMemberProperty:
			if member.IsStatic {
				var value runtime.Value = runtime.None
				if member.Default != nil {
					v, err := i.evaluateExpression(member.Default, env)
					if err != nil {
						return nil, err
					}
					value = v
				}
				if hint := typeHintOf(member.TypeAnnotation); hint != "" && !runtime.TypeMatches(hint, value) {
					return nil, i.errorAt(member, runtime.TypeError, "static '%s' of %s is declared %s but was given %s", memberName, name, hint, runtime.TypeName(value))
				}
				cls.Statics.Set(memberName, value)
				continue
			}
			cls.Fields = append(cls.Fields, runtime.FieldSpec{
				Name:     memberName,
				TypeHint: typeHintOf(member.TypeAnnotation),
				Default:  member.Default,
			})
		case ast.ClassMemberConstructor, ast.ClassMemberMethod, ast.ClassMemberGetter, ast.ClassMemberSetter:
			fn := runtime.NewFunctionFromDefinition(member.Function, env)
			fn.Name = name + "." + memberName
			fn.HomeClass = cls
			switch {
			case member.Kind == ast.ClassMemberConstructor:
				cls.Constructor = fn
			case member.IsStatic:
				cls.Statics.Set(memberName, fn)
			case member.Kind == ast.ClassMemberGetter:
				cls.Getters[memberName] = fn
			case member.Kind == ast.ClassMemberSetter:
				cls.Setters[memberName] = fn
			default:
				cls.Methods[memberName] = fn
			}
		default:
			return nil, fmt.Errorf("unsupported class member kind %s", member.Kind)
		}
	}
	i.logger.Debug("class defined", "class", name, "methods", len(cls.Methods), "fields", len(cls.Fields))
	return cls, nil
}
