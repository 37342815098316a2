package handlers

import (
	"fmt"
	"io"

	"github.com/go-virt/virtd/internal/driver"
	"github.com/go-virt/virtd/internal/protocol/virt"
	"github.com/go-virt/virtd/internal/rpcd/dispatch"
	"github.com/go-virt/virtd/internal/rpcd/handle"
)

func init() {
	dispatch.Register(virt.ProcNetworkLookupByName, handleNetworkLookupByName)
	dispatch.Register(virt.ProcNetworkLookupByUUID, handleNetworkLookupByUUID)
	dispatch.Register(virt.ProcNumOfNetworks, handleNumOfNetworks)
	dispatch.Register(virt.ProcListNetworks, handleListNetworks)
	dispatch.Register(virt.ProcNumOfDefinedNetworks, handleNumOfDefinedNetworks)
	dispatch.Register(virt.ProcListDefinedNetworks, handleListDefinedNetworks)
	dispatch.Register(virt.ProcNetworkCreate, handleNetworkCreate)
	dispatch.Register(virt.ProcNetworkDefineXML, handleNetworkDefineXML)
	dispatch.Register(virt.ProcNetworkUndefine, handleNetworkUndefine)
	dispatch.Register(virt.ProcNetworkDestroy, handleNetworkDestroy)
	dispatch.Register(virt.ProcNetworkGetXMLDesc, handleNetworkGetXMLDesc)
	dispatch.Register(virt.ProcNetworkGetAutostart, handleNetworkGetAutostart)
	dispatch.Register(virt.ProcNetworkSetAutostart, handleNetworkSetAutostart)
	dispatch.Register(virt.ProcNetworkGetBridgeName, handleNetworkGetBridgeName)
}

func handleNetworkLookupByName(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkLookupByNameArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	net, err := hc.Facade.NetworkLookupByName(hc.Conn(), args.Name)
	if err != nil {
		return driverFailed()
	}
	return virt.NetworkRet{Net: handle.MakeNonnullNetwork(hc.Facade, net)}, dispatch.OutcomeSuccess
}

func handleNetworkLookupByUUID(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkLookupByUUIDArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	net, err := hc.Facade.NetworkLookupByUUID(hc.Conn(), args.UUID)
	if err != nil {
		return driverFailed()
	}
	return virt.NetworkRet{Net: handle.MakeNonnullNetwork(hc.Facade, net)}, dispatch.OutcomeSuccess
}

func handleNumOfNetworks(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	n, err := hc.Facade.NumOfNetworks(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.Int32Ret{Value: n}, dispatch.OutcomeSuccess
}

func handleListNetworks(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeListNetworksArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if args.Maxnames > virt.NetworkNameListMax {
		return decodeFailed(w, reqHeader, fmt.Errorf("maxnames %d exceeds maximum %d", args.Maxnames, virt.NetworkNameListMax))
	}
	names, err := hc.Facade.ListNetworks(hc.Conn(), int(args.Maxnames))
	if err != nil {
		return driverFailed()
	}
	return virt.ListNetworksRet{Names: names}, dispatch.OutcomeSuccess
}

func handleNumOfDefinedNetworks(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	n, err := hc.Facade.NumOfDefinedNetworks(hc.Conn())
	if err != nil {
		return driverFailed()
	}
	return virt.Int32Ret{Value: n}, dispatch.OutcomeSuccess
}

func handleListDefinedNetworks(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeListDefinedNetworksArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if args.Maxnames > virt.NetworkNameListMax {
		return decodeFailed(w, reqHeader, fmt.Errorf("maxnames %d exceeds maximum %d", args.Maxnames, virt.NetworkNameListMax))
	}
	names, err := hc.Facade.ListDefinedNetworks(hc.Conn(), int(args.Maxnames))
	if err != nil {
		return driverFailed()
	}
	return virt.ListDefinedNetworksRet{Names: names}, dispatch.OutcomeSuccess
}

func handleNetworkCreate(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithNetwork(hc.Facade, hc.Conn(), args.Net, func(net *driver.Network) error {
		return hc.Facade.NetworkCreate(net)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleNetworkDefineXML(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkDefineXMLArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	net, err := hc.Facade.NetworkDefineXML(hc.Conn(), args.XML)
	if err != nil {
		return driverFailed()
	}
	return virt.NetworkRet{Net: handle.MakeNonnullNetwork(hc.Facade, net)}, dispatch.OutcomeSuccess
}

func handleNetworkUndefine(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithNetwork(hc.Facade, hc.Conn(), args.Net, func(net *driver.Network) error {
		return hc.Facade.NetworkUndefine(net)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleNetworkDestroy(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithNetwork(hc.Facade, hc.Conn(), args.Net, func(net *driver.Network) error {
		return hc.Facade.NetworkDestroy(net)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleNetworkGetXMLDesc(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkGetXMLDescArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var xml string
	derr := handle.WithNetwork(hc.Facade, hc.Conn(), args.Net, func(net *driver.Network) error {
		v, err := hc.Facade.NetworkGetXMLDesc(net, args.Flags)
		xml = v
		return err
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.StringRet{Value: xml}, dispatch.OutcomeSuccess
}

func handleNetworkGetAutostart(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var autostart bool
	derr := handle.WithNetwork(hc.Facade, hc.Conn(), args.Net, func(net *driver.Network) error {
		v, err := hc.Facade.NetworkGetAutostart(net)
		autostart = v
		return err
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.Int32Ret{Value: boolToInt32(autostart)}, dispatch.OutcomeSuccess
}

func handleNetworkSetAutostart(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkSetAutostartArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	if err := handle.WithNetwork(hc.Facade, hc.Conn(), args.Net, func(net *driver.Network) error {
		return hc.Facade.NetworkSetAutostart(net, args.Autostart != 0)
	}); err != nil {
		return driverFailed()
	}
	return virt.Void{}, dispatch.OutcomeSuccess
}

func handleNetworkGetBridgeName(hc *dispatch.HandlerContext, reqHeader virt.Header, body io.Reader, w io.Writer) (dispatch.Encodable, dispatch.Outcome) {
	args, err := virt.DecodeNetworkOnlyArgs(body)
	if err != nil {
		return decodeFailed(w, reqHeader, err)
	}
	var bridge string
	derr := handle.WithNetwork(hc.Facade, hc.Conn(), args.Net, func(net *driver.Network) error {
		v, err := hc.Facade.NetworkGetBridgeName(net)
		bridge = v
		return err
	})
	if derr != nil {
		return driverFailed()
	}
	return virt.StringRet{Value: bridge}, dispatch.OutcomeSuccess
}
