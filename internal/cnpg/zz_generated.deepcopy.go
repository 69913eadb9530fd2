package cnpg

import runtime "k8s.io/apimachinery/pkg/runtime"

// DeepCopyObject implements runtime.Object so *Cluster satisfies
// controller-runtime's client.Object.
func (in *Cluster) DeepCopyObject() runtime.Object {
	if in == nil {
		return nil
	}
	out := new(Cluster)
	in.DeepCopyInto(out)
	return out
}

func (in *Cluster) DeepCopyInto(out *Cluster) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = in.Spec.deepCopy()
}

func (in ClusterSpec) deepCopy() ClusterSpec {
	out := in
	if in.PostgresConfiguration.Parameters != nil {
		m := make(map[string]string, len(in.PostgresConfiguration.Parameters))
		for k, v := range in.PostgresConfiguration.Parameters {
			m[k] = v
		}
		out.PostgresConfiguration.Parameters = m
	}
	if in.PostgresConfiguration.SharedPreloadLibraries != nil {
		out.PostgresConfiguration.SharedPreloadLibraries = append([]string(nil), in.PostgresConfiguration.SharedPreloadLibraries...)
	}
	out.StorageConfiguration.Size = in.StorageConfiguration.Size.DeepCopy()
	if in.Backup != nil {
		b := *in.Backup
		if in.Backup.VolumeSnapshot != nil {
			vs := *in.Backup.VolumeSnapshot
			b.VolumeSnapshot = &vs
		}
		out.Backup = &b
	}
	if in.Bootstrap != nil {
		bs := *in.Bootstrap
		if in.Bootstrap.Recovery != nil {
			r := *in.Bootstrap.Recovery
			out.Bootstrap = &BootstrapConfiguration{Recovery: &r}
		} else {
			out.Bootstrap = &bs
		}
	}
	return out
}
