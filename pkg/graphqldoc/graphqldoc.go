// Package graphqldoc holds the GraphQL document operations the upload link
// needs: parsing, printing, mutation detection and unused variable removal.
package graphqldoc

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

func Parse(query string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return nil, errors.Wrap(err, "parse query")
	}
	return doc, nil
}

// Print renders doc in the canonical gqlparser layout.
func Print(doc *ast.QueryDocument) string {
	if doc == nil {
		return ""
	}
	buf := &bytes.Buffer{}
	formatter.NewFormatter(buf, formatter.WithIndent("  ")).FormatQueryDocument(doc)
	return buf.String()
}

func HasMutation(doc *ast.QueryDocument) bool {
	if doc == nil {
		return false
	}
	for _, operation := range doc.Operations {
		if operation.Operation == ast.Mutation {
			return true
		}
	}
	return false
}

// DefinedVariables returns the names of every variable declared by an
// operation of doc.
func DefinedVariables(doc *ast.QueryDocument) map[string]struct{} {
	defined := map[string]struct{}{}
	if doc == nil {
		return defined
	}
	for _, operation := range doc.Operations {
		for _, definition := range operation.VariableDefinitions {
			defined[definition.Variable] = struct{}{}
		}
	}
	return defined
}

// UsedVariables returns the names of every variable referenced anywhere in
// doc outside of variable definitions.
func UsedVariables(doc *ast.QueryDocument) map[string]struct{} {
	c := &variableCollector{used: map[string]struct{}{}}
	if doc == nil {
		return c.used
	}
	for _, operation := range doc.Operations {
		c.directives(operation.Directives)
		for _, definition := range operation.VariableDefinitions {
			c.directives(definition.Directives)
		}
		c.selectionSet(operation.SelectionSet)
	}
	for _, fragment := range doc.Fragments {
		c.directives(fragment.Directives)
		c.selectionSet(fragment.SelectionSet)
	}
	return c.used
}

// FilterVariables returns a copy of variables holding only the variables doc
// references outside of variable definitions.
func FilterVariables(variables map[string]any, doc *ast.QueryDocument) map[string]any {
	if variables == nil {
		return nil
	}
	used := UsedVariables(doc)
	filtered := make(map[string]any, len(variables))
	for name, value := range variables {
		if _, ok := used[name]; ok {
			filtered[name] = value
		}
	}
	return filtered
}

type variableCollector struct {
	used map[string]struct{}
}

func (c *variableCollector) selectionSet(set ast.SelectionSet) {
	for _, selection := range set {
		switch s := selection.(type) {
		case *ast.Field:
			c.arguments(s.Arguments)
			c.directives(s.Directives)
			c.selectionSet(s.SelectionSet)
		case *ast.FragmentSpread:
			c.directives(s.Directives)
		case *ast.InlineFragment:
			c.directives(s.Directives)
			c.selectionSet(s.SelectionSet)
		}
	}
}

func (c *variableCollector) directives(directives ast.DirectiveList) {
	for _, directive := range directives {
		c.arguments(directive.Arguments)
	}
}

func (c *variableCollector) arguments(arguments ast.ArgumentList) {
	for _, argument := range arguments {
		c.value(argument.Value)
	}
}

func (c *variableCollector) value(value *ast.Value) {
	if value == nil {
		return
	}
	if value.Kind == ast.Variable {
		c.used[value.Raw] = struct{}{}
		return
	}
	for _, child := range value.Children {
		c.value(child.Value)
	}
}
