package v1alpha1

import runtime "k8s.io/apimachinery/pkg/runtime"

func (in *IngressRouteTCP) DeepCopy() *IngressRouteTCP {
	if in == nil {
		return nil
	}
	out := new(IngressRouteTCP)
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = in.Spec.deepCopy()
	return out
}

func (in *IngressRouteTCP) DeepCopyObject() runtime.Object {
	return in.DeepCopy()
}

func (in IngressRouteTCPSpec) deepCopy() IngressRouteTCPSpec {
	out := in
	if in.EntryPoints != nil {
		out.EntryPoints = append([]string(nil), in.EntryPoints...)
	}
	if in.Routes != nil {
		routes := make([]IngressRouteTCPRoute, len(in.Routes))
		for i := range in.Routes {
			routes[i] = in.Routes[i].deepCopy()
		}
		out.Routes = routes
	}
	if in.TLS != nil {
		tls := *in.TLS
		out.TLS = &tls
	}
	return out
}

func (in IngressRouteTCPRoute) deepCopy() IngressRouteTCPRoute {
	out := in
	if in.Services != nil {
		svcs := make([]IngressRouteTCPService, len(in.Services))
		for i := range in.Services {
			svcs[i] = in.Services[i]
			if in.Services[i].Weight != nil {
				w := *in.Services[i].Weight
				svcs[i].Weight = &w
			}
		}
		out.Services = svcs
	}
	if in.Middlewares != nil {
		out.Middlewares = append([]IngressRouteTCPMiddlewareRef(nil), in.Middlewares...)
	}
	return out
}

func (in *IngressRouteTCPList) DeepCopyObject() runtime.Object {
	if in == nil {
		return nil
	}
	out := new(IngressRouteTCPList)
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		items := make([]IngressRouteTCP, len(in.Items))
		for i := range in.Items {
			in.Items[i].ObjectMeta.DeepCopyInto(&items[i].ObjectMeta)
			items[i].TypeMeta = in.Items[i].TypeMeta
			items[i].Spec = in.Items[i].Spec.deepCopy()
		}
		out.Items = items
	}
	return out
}

func (in *MiddlewareTCP) DeepCopyObject() runtime.Object {
	if in == nil {
		return nil
	}
	out := new(MiddlewareTCP)
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	if in.Spec.IPAllowList != nil {
		allow := MiddlewareTCPIPAllowList{}
		if in.Spec.IPAllowList.SourceRange != nil {
			allow.SourceRange = append([]string(nil), in.Spec.IPAllowList.SourceRange...)
		}
		out.Spec.IPAllowList = &allow
	}
	return out
}

func (in *MiddlewareTCPList) DeepCopyObject() runtime.Object {
	if in == nil {
		return nil
	}
	out := new(MiddlewareTCPList)
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		items := make([]MiddlewareTCP, len(in.Items))
		copy(items, in.Items)
		for i := range in.Items {
			copied := in.Items[i].DeepCopyObject().(*MiddlewareTCP)
			items[i] = *copied
		}
		out.Items = items
	}
	return out
}
