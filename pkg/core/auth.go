/*******************************************************************************
*
* Copyright 2022 SAP SE
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You should have received a copy of the License along with this
* program. If not, you may obtain a copy of the License at
*
*     http://www.apache.org/licenses/LICENSE-2.0
*
* Unless required by applicable law or agreed to in writing, software
* distributed under the License is distributed on an "AS IS" BASIS,
* WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
* See the License for the specific language governing permissions and
* limitations under the License.
*
*******************************************************************************/

package core

import (
	"fmt"
	"os"

	policy "github.com/databus23/goslo.policy"
	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/gophercloud/utils/openstack/clientconfig"
	"github.com/sapcc/go-bits/gopherpolicy"
	"github.com/sapcc/go-bits/osext"
	yaml "gopkg.in/yaml.v2"
)

// AuthParameters contains the gophercloud authentication things.
type AuthParameters struct {
	//The following fields are only valid after calling Connect().
	ProviderClient *gophercloud.ProviderClient
	EndpointOpts   gophercloud.EndpointOpts
	ManilaV2       *gophercloud.ServiceClient
	IdentityV3     *gophercloud.ServiceClient
	TokenValidator gopherpolicy.Validator
}

// Connect authenticates with Keystone using the OS_* environment variables
// and initializes the service clients. It is idempotent.
func (auth *AuthParameters) Connect(config Configuration) error {
	if auth.ProviderClient != nil {
		//already done
		return nil
	}

	ao, err := clientconfig.AuthOptions(nil)
	if err != nil {
		return fmt.Errorf("cannot find OpenStack credentials: %w", err)
	}
	ao.AllowReauth = true
	auth.ProviderClient, err = openstack.AuthenticatedClient(*ao)
	if err != nil {
		return fmt.Errorf("cannot initialize OpenStack client: %w", err)
	}

	auth.EndpointOpts = gophercloud.EndpointOpts{
		Availability: gophercloud.Availability(os.Getenv("OS_INTERFACE")),
		Region:       os.Getenv("OS_REGION_NAME"),
	}

	auth.ManilaV2, err = openstack.NewSharedFileSystemV2(auth.ProviderClient, auth.EndpointOpts)
	if err != nil {
		return fmt.Errorf("cannot initialize Manila v2 client: %w", err)
	}
	auth.ManilaV2.Microversion = config.Manila.Microversion

	auth.IdentityV3, err = openstack.NewIdentityV3(auth.ProviderClient, auth.EndpointOpts)
	if err != nil {
		return fmt.Errorf("cannot initialize Keystone v3 client: %w", err)
	}

	policyPath := osext.GetenvOrDefault("MANILA_UI_API_POLICY_PATH", "/etc/manila-ui/policy.yaml")
	enforcer, err := loadPolicyFile(policyPath)
	if err != nil {
		return fmt.Errorf("could not load policy file %s: %w", policyPath, err)
	}
	auth.TokenValidator = &gopherpolicy.TokenValidator{
		IdentityV3: auth.IdentityV3,
		Enforcer:   enforcer,
		Cacher:     gopherpolicy.InMemoryCacher(),
	}

	return nil
}

func loadPolicyFile(path string) (gopherpolicy.Enforcer, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules map[string]string
	err = yaml.Unmarshal(buf, &rules)
	if err != nil {
		return nil, err
	}
	return policy.NewEnforcer(rules)
}
