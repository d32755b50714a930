package zookeeper

// znode 路径布局
const (
	frameworksRoot = "/frameworks"
	endpointsRoot  = "/endpoints"
)

// frameworkPath 框架临时节点路径
func frameworkPath(fwUID string) string {
	return frameworksRoot + "/" + fwUID
}

// frameworkEndpointsPath 框架端点目录路径
func frameworkEndpointsPath(fwUID string) string {
	return endpointsRoot + "/" + fwUID
}

// endpointPath 端点临时节点路径
func endpointPath(fwUID, uid string) string {
	return endpointsRoot + "/" + fwUID + "/" + uid
}
