package evm

// escrowABI describes the events of the bounty escrow contract
const escrowABI = `[
  {"type":"event","name":"BountyCreated","anonymous":false,"inputs":[
    {"name":"bountyId","type":"bytes32","indexed":true},
    {"name":"creator","type":"address","indexed":true},
    {"name":"issueUrl","type":"string","indexed":false}]},
  {"type":"event","name":"BountyFunded","anonymous":false,"inputs":[
    {"name":"bountyId","type":"bytes32","indexed":true},
    {"name":"funder","type":"address","indexed":true},
    {"name":"token","type":"address","indexed":false},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"ClaimSubmitted","anonymous":false,"inputs":[
    {"name":"bountyId","type":"bytes32","indexed":true},
    {"name":"claimant","type":"address","indexed":true},
    {"name":"claimUrl","type":"string","indexed":false}]},
  {"type":"event","name":"BountyPaid","anonymous":false,"inputs":[
    {"name":"bountyId","type":"bytes32","indexed":true},
    {"name":"recipient","type":"address","indexed":true},
    {"name":"token","type":"address","indexed":false},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"BountyRefunded","anonymous":false,"inputs":[
    {"name":"bountyId","type":"bytes32","indexed":true},
    {"name":"funder","type":"address","indexed":true},
    {"name":"token","type":"address","indexed":false},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"BountyClosed","anonymous":false,"inputs":[
    {"name":"bountyId","type":"bytes32","indexed":true}]}
]`

// gatewayMinterABI describes the mint entrypoint of the destination-chain gateway minter
const gatewayMinterABI = `[
  {"type":"function","name":"gatewayMint","stateMutability":"nonpayable","inputs":[
    {"name":"attestationPayload","type":"bytes"},
    {"name":"signature","type":"bytes"}],"outputs":[]}
]`
