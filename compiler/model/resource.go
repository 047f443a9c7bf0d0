package model

// ResourceProperty returns the property owning the translation of the
// label of p. Properties mixed in from a decorator delegate to the
// decorator's declaration, and aliases keeping the label of the aliased
// property delegate to it. A delegation cycle is reported as a
// *ResolutionError.
func (g *Graph) ResourceProperty(p Property) (Property, error) {
	return g.resourceOwner(p, "label", func(alp *AliasProperty, orig Property) bool {
		return g.Label(alp) == g.Label(orig)
	})
}

// CommentResourceProperty is the ResourceProperty of comments.
func (g *Graph) CommentResourceProperty(p Property) (Property, error) {
	return g.resourceOwner(p, "comment", func(alp *AliasProperty, orig Property) bool {
		return g.Comment(alp) == g.Comment(orig)
	})
}

func (g *Graph) resourceOwner(p Property, kind string, same func(*AliasProperty, Property) bool) (Property, error) {
	var (
		cur  = p
		seen = make(map[Property]bool)
	)
	for {
		if seen[cur] {
			return nil, &ResolutionError{
				Class:    g.Parent(p).Name,
				Property: g.Name(p),
				Message:  kind + " resource delegation cycle",
			}
		}
		seen[cur] = true

		b := cur.Base()
		if b.Decorator.Valid() && b.Owner.Decorator != b.Decorator {
			next := g.decoratorProperty(b.Decorator, g.Name(cur))
			if next == nil {
				return nil, &ResolutionError{
					Class:    g.Parent(cur).Name,
					Property: g.Name(cur),
					Message:  "property not declared by its decorator",
				}
			}
			cur = next
			continue
		}
		if alp, ok := cur.(*AliasProperty); ok {
			if orig := g.Property(alp.Property); orig != nil && same(alp, orig) {
				cur = orig
				continue
			}
		}
		return cur, nil
	}
}

func (g *Graph) decoratorProperty(id DecoratorID, name string) Property {
	d := g.Decorator(id)
	if d == nil {
		return nil
	}
	for _, dp := range g.Properties(d.Properties) {
		if g.Name(dp) == name {
			return dp
		}
	}
	return nil
}

// ResourceKey returns the translation key of the label of p:
// "{module}.{container}.{property}", camel-cased.
func (g *Graph) ResourceKey(p Property) (string, error) {
	rp, err := g.ResourceProperty(p)
	if err != nil {
		return "", err
	}
	return g.resourceKey(rp), nil
}

// CommentResourceKey returns the translation key of the comment of p.
func (g *Graph) CommentResourceKey(p Property) (string, error) {
	rp, err := g.CommentResourceProperty(p)
	if err != nil {
		return "", err
	}
	return "comments." + g.resourceKey(rp), nil
}

func (g *Graph) resourceKey(p Property) string {
	parent := g.Parent(p)
	return parent.Namespace.ModuleCamel() + "." + parent.NameCamel() + "." + g.NameCamel(p)
}
