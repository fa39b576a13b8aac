// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vz

import (
	"fmt"

	"github.com/Code-Hex/vz/v3"
	"github.com/aibor/linuxvm/internal/machine"
)

// newConfiguration maps the machine config onto a framework configuration.
func newConfiguration(
	cfg *machine.Config,
) (*vz.VirtualMachineConfiguration, error) {
	bootLoader, err := newBootLoader(cfg.BootLoader)
	if err != nil {
		return nil, fmt.Errorf("boot loader: %w", err)
	}

	vzConfig, err := vz.NewVirtualMachineConfiguration(
		bootLoader,
		cfg.CPUCount,
		cfg.MemorySize,
	)
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}

	consoles, err := newConsoles(cfg.ConsolePorts)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	vzConfig.SetSerialPortsVirtualMachineConfiguration(consoles)

	storageDevices, err := newStorageDevices(cfg.StorageDevices)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	vzConfig.SetStorageDevicesVirtualMachineConfiguration(storageDevices)

	networkDevices, err := newNetworkDevices(cfg.NetworkDevices)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	vzConfig.SetNetworkDevicesVirtualMachineConfiguration(networkDevices)

	entropy, err := vz.NewVirtioEntropyDeviceConfiguration()
	if err != nil {
		return nil, fmt.Errorf("entropy: %w", err)
	}

	vzConfig.SetEntropyDevicesVirtualMachineConfiguration(
		[]*vz.VirtioEntropyDeviceConfiguration{entropy},
	)

	return vzConfig, nil
}

func newBootLoader(bootLoader *machine.BootLoader) (*vz.LinuxBootLoader, error) {
	opts := []vz.LinuxBootLoaderOption{
		vz.WithCommandLine(bootLoader.CommandLine),
	}

	if bootLoader.InitrdPath != "" {
		opts = append(opts, vz.WithInitrd(bootLoader.InitrdPath))
	}

	return vz.NewLinuxBootLoader(bootLoader.KernelPath, opts...)
}

func newConsoles(
	ports []machine.SerialPort,
) ([]*vz.VirtioConsoleDeviceSerialPortConfiguration, error) {
	consoles := make([]*vz.VirtioConsoleDeviceSerialPortConfiguration, 0, len(ports))

	for _, port := range ports {
		attachment, err := vz.NewFileHandleSerialPortAttachment(
			port.Attachment.Read,
			port.Attachment.Write,
		)
		if err != nil {
			return nil, err
		}

		console, err := vz.NewVirtioConsoleDeviceSerialPortConfiguration(attachment)
		if err != nil {
			return nil, err
		}

		consoles = append(consoles, console)
	}

	return consoles, nil
}

func newStorageDevices(
	devices []machine.StorageDevice,
) ([]vz.StorageDeviceConfiguration, error) {
	storageDevices := make([]vz.StorageDeviceConfiguration, 0, len(devices))

	for idx, dev := range devices {
		attachment, err := vz.NewDiskImageStorageDeviceAttachment(
			dev.ImagePath,
			dev.ReadOnly,
		)
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", idx, err)
		}

		blockDevice, err := vz.NewVirtioBlockDeviceConfiguration(attachment)
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", idx, err)
		}

		storageDevices = append(storageDevices, blockDevice)
	}

	return storageDevices, nil
}

func newNetworkDevices(
	devices []machine.NetworkDevice,
) ([]*vz.VirtioNetworkDeviceConfiguration, error) {
	networkDevices := make([]*vz.VirtioNetworkDeviceConfiguration, 0, len(devices))

	for idx, dev := range devices {
		attachment, err := newNetworkAttachment(dev)
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", idx, err)
		}

		networkDevice, err := vz.NewVirtioNetworkDeviceConfiguration(attachment)
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", idx, err)
		}

		if len(dev.MACAddress) > 0 {
			mac, err := vz.NewMACAddress(dev.MACAddress)
			if err != nil {
				return nil, fmt.Errorf("device %d: mac address: %w", idx, err)
			}

			networkDevice.SetMACAddress(mac)
		}

		networkDevices = append(networkDevices, networkDevice)
	}

	return networkDevices, nil
}

func newNetworkAttachment(
	dev machine.NetworkDevice,
) (vz.NetworkDeviceAttachment, error) {
	if dev.Attachment != machine.NetworkAttachmentBridged {
		return vz.NewNATNetworkDeviceAttachment()
	}

	iface, err := bridgedNetwork(dev.Interface)
	if err != nil {
		return nil, err
	}

	return vz.NewBridgedNetworkDeviceAttachment(iface)
}

// bridgedNetwork looks up the host interface with the given BSD name.
func bridgedNetwork(name string) (vz.BridgedNetwork, error) {
	for _, iface := range vz.NetworkInterfaces() {
		if iface.Identifier() == name {
			return iface, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrInterfaceNotFound, name)
}
